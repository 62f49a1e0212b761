// Package inspect renders resolved endpoint plans for humans: one table per
// endpoint listing every parameter with its decided binding source and
// optionality. Useful at startup to verify a route table resolves the way
// it was meant to.
package inspect

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/toyz/conduit/pkg/conduit"
)

var (
	methodColor   = color.New(color.FgGreen, color.Bold)
	patternColor  = color.New(color.FgCyan)
	requiredColor = color.New(color.FgYellow)
)

// Explain writes a human-readable description of each endpoint's binding
// decisions to w
func Explain(w io.Writer, endpoints ...conduit.EndpointInfo) {
	for i, ep := range endpoints {
		if i > 0 {
			fmt.Fprintln(w)
		}
		explainEndpoint(w, ep)
	}
}

// ExplainAll writes every endpoint of the registry to stderr
func ExplainAll(registry conduit.EndpointRegistry) {
	Explain(os.Stderr, registry.GetAllEndpoints()...)
}

func explainEndpoint(w io.Writer, ep conduit.EndpointInfo) {
	fmt.Fprintf(w, "%s %s",
		methodColor.Sprint(ep.Method),
		patternColor.Sprint(ep.Pattern.Raw()))
	if ep.Name != "" {
		fmt.Fprintf(w, "  -> %s", ep.Name)
	}
	fmt.Fprintln(w)

	if ep.Plan == nil {
		fmt.Fprintln(w, "  (no plan)")
		return
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  PARAMETER\tTYPE\tSOURCE\tNAME\tPRESENCE")
	for _, decision := range ep.Plan.Decisions() {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			decision.Param.Name,
			decision.Param.Type,
			decision.Source,
			lookupName(decision),
			presence(decision))
	}
	tw.Flush()
}

func lookupName(decision conduit.BindingDecision) string {
	if decision.Name == "" {
		return "-"
	}
	return decision.Name
}

func presence(decision conduit.BindingDecision) string {
	if decision.Required {
		return requiredColor.Sprint("required")
	}
	return fmt.Sprintf("optional (%s)", decision.Reason)
}
