// Package notify provides Notifier implementations that deliver
// completed analyses to an output channel.
package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
)

// Ensure ConsoleNotifier implements the interface.
var _ driven.Notifier = (*ConsoleNotifier)(nil)

// ConsoleNotifier writes each analysis result to a writer as it is
// produced. In JSON mode it emits one wire-format record per line,
// suitable for piping into downstream tools.
type ConsoleNotifier struct {
	mu   sync.Mutex
	out  io.Writer
	json bool
}

// NewConsoleNotifier creates a notifier writing human-readable lines.
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

// NewJSONNotifier creates a notifier writing one JSON record per line.
func NewJSONNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out, json: true}
}

// AnalysisCompleted writes one line per analysed document.
func (n *ConsoleNotifier) AnalysisCompleted(analysis domain.Analysis) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.json {
		data, err := json.Marshal(analysis.Record())
		if err != nil {
			fmt.Fprintf(n.out, "{\"error\": %q}\n", err.Error())
			return
		}
		fmt.Fprintf(n.out, "%s\n", data)
		return
	}

	subject := analysis.Subject
	if subject == "" {
		subject = analysis.URI
	}
	fmt.Fprintf(n.out, "[%s] %s (%d items, %.2f %s)\n",
		analysis.Tag, subject, len(analysis.Items),
		analysis.Totals.Amount, analysis.Totals.Currency)
}

// AnalysisFailed writes one line per failed document.
func (n *ConsoleNotifier) AnalysisFailed(uri string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.json {
		fmt.Fprintf(n.out, "{\"uri\": %q, \"error\": %q}\n", uri, err.Error())
		return
	}
	fmt.Fprintf(n.out, "[FAILED] %s: %v\n", uri, err)
}
