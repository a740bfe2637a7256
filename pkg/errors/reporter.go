package errors

import (
	"bytes"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/certifi/gocertifi"
	"github.com/getsentry/sentry-go"
	"moff.io/dapp-demo/pkg/errors/reporter"
	"moff.io/dapp-demo/pkg/log"
)

var (
	reportersMu sync.RWMutex
	reporters   []Reporter
)

// debugMode disables every reporter when set in the environment.
const debugMode = "DEBUG"

func init() {
	if os.Getenv(debugMode) == "" {
		log.Info("Env DEBUG not set, report errors enabled.")
	} else {
		log.Info("Env DEBUG set, report errors disabled.")
	}
}

func report(err error) {
	if err == nil || os.Getenv(debugMode) != "" {
		return
	}
	reportersMu.RLock()
	defer reportersMu.RUnlock()
	for _, r := range reporters {
		r.Report(err)
	}
}

// Reporter pushes an error to an external alarm channel.
type Reporter interface {
	Report(error)
}

// RegisterReporter adds r to the reporters consulted by every *AndReport helper.
func RegisterReporter(r Reporter) {
	if r == nil {
		return
	}
	reportersMu.Lock()
	reporters = append(reporters, r)
	reportersMu.Unlock()
}

// ResetReporters drops all registered reporters.
func ResetReporters() {
	reportersMu.Lock()
	reporters = nil
	reportersMu.Unlock()
}

type sentryReporter struct{}

func (s *sentryReporter) Report(err error) {
	sentry.CaptureException(err)
}

// NewSentryReporter initializes the sentry client and registers it as a reporter.
// An empty DSN skips the reporter.
func NewSentryReporter(sentryDSN, environment string) error {
	if sentryDSN == "" {
		log.Warn("empty DSN found, skipping sentry reporter initialization.")
		return nil
	}
	rootCAs, err := gocertifi.CACerts()
	if err != nil {
		return Wrap(err, "init sentry CA")
	}
	err = sentry.Init(sentry.ClientOptions{
		Dsn:         sentryDSN,
		Environment: environment,
		CaCerts:     rootCAs,
	})
	if err != nil {
		return Wrap(err, "init sentry")
	}
	RegisterReporter(&sentryReporter{})
	log.Info("sentry error reporter initialized.")
	return nil
}

// FlushSentry waits for buffered sentry events, used on shutdown.
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

type dingTalkRobotReporter struct {
	limiter *rateLimiter
	reporter.DingTalkRobot
}

// NewDingTalkReporter registers a DingTalk robot posting to webhook.
// The same stack is reported at most once per reportDelay.
func NewDingTalkReporter(webhook, secret string, reportDelay time.Duration) {
	if webhook == "" {
		log.Warn("empty dingtalk webhook found, skipping dingtalk reporter initialization.")
		return
	}
	robot := reporter.NewDingTalkRobot(webhook).WithSecret(secret)
	RegisterReporter(&dingTalkRobotReporter{limiter: newRateLimiter(reportDelay), DingTalkRobot: robot})
	log.Info("dingtalk error reporter initialized.")
}

const (
	errorField  = "error: "
	stacksField = "\nstacks:\n"
	breakline   = "\n"
	indent      = "	"
)

func (r *dingTalkRobotReporter) Report(err error) {
	if err == nil {
		return
	}
	stacks := callers().fullStack()
	limited, stats := r.limiter.StackBasedRateLimited(stacks[2])
	if limited {
		return
	}
	var content bytes.Buffer
	content.WriteString("dapp-demo error")
	content.WriteString(breakline)
	content.WriteString("last report:")
	content.WriteString(formatReportTime(stats.lastReportTime))
	content.WriteString(breakline)
	content.WriteString("occur since last report:")
	content.WriteString(strconv.Itoa(stats.occurCountSinceLastReport))
	content.WriteString(breakline)
	content.WriteString(errorField)
	content.WriteString(err.Error())
	content.WriteString(stacksField)
	for _, s := range stacks {
		content.WriteString(indent)
		content.WriteString(s)
		content.WriteString(breakline)
	}
	if err := r.SendText(content.String(), nil, false); err != nil {
		log.Warnf("dingtalk report: %v", err)
	}
}
