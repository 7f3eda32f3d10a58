package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pycheck/internal/analyzer/detectors"
)

var ruleCmd = &cobra.Command{
	Use:   "rule [CODE]",
	Short: "Explain a rule, or list all rules",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			listRules(out)
			return nil
		}
		rule, ok := detectors.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown rule %q", args[0])
		}
		explainRule(out, rule)
		return nil
	},
}

func listRules(w io.Writer) {
	for _, rule := range detectors.Rules() {
		marker := " "
		if rule.Fixable {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-8s %-26s %s\n", marker, rule.Code, rule.Name, rule.Summary)
	}
}

func explainRule(w io.Writer, rule detectors.Rule) {
	fmt.Fprintf(w, "# %s (%s)\n\n", rule.Name, rule.Code)
	fmt.Fprintf(w, "%s\n\n", rule.Summary)
	if rule.Fixable {
		fmt.Fprintln(w, "Fix is always available.")
		fmt.Fprintln(w)
	}
	fmt.Fprint(w, rule.Explanation)
}
