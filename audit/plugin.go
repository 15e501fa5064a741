package audit

import (
	"context"
	"time"

	"github.com/xraph/doorman"
	"github.com/xraph/doorman/session"
)

// Plugin feeds the trail from engine lifecycle hooks. Register it with
// doorman.WithPlugin.
type Plugin struct {
	trail *Trail
}

// NewPlugin creates an audit plugin writing to the given trail. A nil
// trail gets a default-capacity one.
func NewPlugin(trail *Trail) *Plugin {
	if trail == nil {
		trail = NewTrail(DefaultCapacity)
	}
	return &Plugin{trail: trail}
}

// Trail returns the underlying trail for inspection.
func (p *Plugin) Trail() *Trail { return p.trail }

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return "audit" }

// OnAfterResolve records every successful resolution.
func (p *Plugin) OnAfterResolve(_ context.Context, req, result any) error {
	rr, ok1 := req.(*doorman.ResolveRequest)
	res, ok2 := result.(*doorman.ResolveResult)
	if !ok1 || !ok2 {
		return nil
	}
	p.trail.Record(&Entry{
		Role:       string(res.Role),
		Source:     string(res.Source),
		AccountID:  res.AccountID,
		SessionID:  rr.SessionID,
		HitsUsed:   res.HitsUsed,
		EvalTimeNs: res.EvalTimeNs,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// OnQuotaExhausted records refused demo hits.
func (p *Plugin) OnQuotaExhausted(_ context.Context, s *session.DemoSession) error {
	p.trail.Record(&Entry{
		Role:      string(doorman.RoleDemo),
		Source:    string(doorman.SourceDemo),
		SessionID: s.SessionID,
		HitsUsed:  s.HitCount,
		Refused:   true,
		Reason:    "demo limit reached",
		CreatedAt: time.Now().UTC(),
	})
	return nil
}
