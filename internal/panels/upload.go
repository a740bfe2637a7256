package panels

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"moff.io/dapp-demo/internal/config"
	"moff.io/dapp-demo/internal/i18n"
	"moff.io/dapp-demo/pkg/common"
	"moff.io/dapp-demo/pkg/concurrent"
	"moff.io/dapp-demo/pkg/log"
)

var AcceptedExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".png"}

// Document describes a selected file. The content is never read.
type Document struct {
	Name        string
	Size        int64
	ContentType string
}

// Progress is one step of a simulated upload.
type Progress struct {
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

type Uploader struct {
	maxBytes  int64
	stepDelay time.Duration
	limiter   concurrent.Limiter
	tr        *i18n.Translator
}

func NewUploader(cfg config.Upload, tr *i18n.Translator) *Uploader {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	if tr == nil {
		tr = i18n.Default
	}
	return &Uploader{
		maxBytes:  cfg.MaxBytes,
		stepDelay: cfg.StepDelay,
		limiter:   concurrent.NewLimiter(maxConcurrent),
		tr:        tr,
	}
}

// Check validates a selection. The returned result is only meaningful when
// ok is false.
func (u *Uploader) Check(doc *Document) (Result, bool) {
	if doc == nil || doc.Name == "" {
		return failed(u.tr.Sprintf(i18n.MsgNoFileSelected)), false
	}
	if u.maxBytes > 0 && doc.Size > u.maxBytes {
		return failed(u.tr.Sprintf(i18n.MsgFileTooLarge, u.maxBytes/(1024*1024))), false
	}
	ext := strings.ToLower(filepath.Ext(doc.Name))
	for _, accepted := range AcceptedExtensions {
		if ext == accepted {
			return Result{}, true
		}
	}
	return failed(u.tr.Sprintf(i18n.MsgFileTypeRejected, ext)), false
}

// Upload simulates sending doc, reporting 0 to 100 percent in steps of ten.
// Only context cancellation is returned as an error.
func (u *Uploader) Upload(ctx context.Context, doc *Document, progress func(Progress)) (Result, error) {
	if res, ok := u.Check(doc); !ok {
		return res, nil
	}
	if err := u.limiter.AddContext(ctx); err != nil {
		return Result{}, err
	}
	defer u.limiter.Done()

	id := common.NewCutUUIDString()
	uploading := u.tr.Sprintf(i18n.MsgUploading, doc.Name)
	for percent := 0; percent <= 100; percent += 10 {
		select {
		case <-time.After(u.stepDelay):
		case <-ctx.Done():
			log.Infof("upload %s of %s canceled at %d%%", id, doc.Name, percent)
			return Result{}, ctx.Err()
		}
		if progress != nil {
			progress(Progress{Percent: percent, Message: uploading})
		}
	}
	log.Infof("upload %s simulated: name=%s size=%d type=%s", id, doc.Name, doc.Size, doc.ContentType)
	return Result{OK: true, ID: id, Message: u.tr.Sprintf(i18n.MsgUploadDone, doc.Name)}, nil
}
