package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatehouse/internal/common"
	"github.com/dmitrijs2005/gatehouse/internal/models"
	"github.com/hashicorp/go-bexpr"
)

// fields exposes an entry to filter expressions.
func fields(e models.AuditEntry) map[string]any {
	return map[string]any{
		"Seq":       e.Seq,
		"Timestamp": e.Timestamp.Format(time.RFC3339),
		"Username":  e.Username,
		"Action":    string(e.Action),
		"Detail":    e.Detail,
		"Success":   e.Success,
	}
}

func (l *Log) evaluator(expr string) (*bexpr.Evaluator, error) {
	if ev, ok := l.queries.Get(expr); ok {
		return ev, nil
	}
	ev, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, fmt.Errorf("parse audit query: %v: %w", err, common.ErrInvalidArgument)
	}
	l.queries.Add(expr, ev)
	return ev, nil
}

// Query returns the retained entries matching a boolean expression over the
// fields Seq, Timestamp, Username, Action, Detail and Success, e.g.
//
//	Action == "LOGIN" and Success == false
//
// An empty expression matches everything.
func (l *Log) Query(expr string) ([]models.AuditEntry, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return l.All(), nil
	}

	ev, err := l.evaluator(expr)
	if err != nil {
		return nil, err
	}

	out := make([]models.AuditEntry, 0)
	for _, e := range l.All() {
		ok, err := ev.Evaluate(fields(e))
		if err != nil {
			// Missing selectors do not match.
			continue
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}
