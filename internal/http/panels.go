package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moff.io/dapp-demo/internal/panels"
	"moff.io/dapp-demo/pkg/log"
)

func (s *Server) register(ctx *gin.Context) {
	var form panels.RegistrationForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		badRequest(ctx, err)
		return
	}
	res := s.registrar.Register(form)
	if !res.OK {
		ctx.JSON(http.StatusBadRequest, res)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

type registryRequest struct {
	ID string `json:"id"`
}

func (s *Server) checkRegistry(ctx *gin.Context) {
	var req registryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	res, err := s.registry.Check(ctx.Request.Context(), req.ID)
	if err != nil {
		ctx.JSON(http.StatusGatewayTimeout, gin.H{"code": 5040, "msg": err.Error()})
		return
	}
	if res.Status == "" {
		ctx.JSON(http.StatusBadRequest, res)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

// uploadDocument validates the multipart "file" and then streams the
// simulated progress as server-sent events: progress..., then done or error.
func (s *Server) uploadDocument(ctx *gin.Context) {
	var doc *panels.Document
	if header, err := ctx.FormFile("file"); err == nil {
		doc = &panels.Document{
			Name:        header.Filename,
			Size:        header.Size,
			ContentType: header.Header.Get("Content-Type"),
		}
	}
	if res, ok := s.uploader.Check(doc); !ok {
		ctx.JSON(http.StatusBadRequest, res)
		return
	}

	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	res, err := s.uploader.Upload(ctx.Request.Context(), doc, func(p panels.Progress) {
		ctx.SSEvent("progress", p)
		ctx.Writer.Flush()
	})
	if err != nil {
		log.Infof("upload of %s aborted: %v", doc.Name, err)
		ctx.SSEvent("error", gin.H{"msg": err.Error()})
		ctx.Writer.Flush()
		return
	}
	ctx.SSEvent("done", res)
	ctx.Writer.Flush()
}
