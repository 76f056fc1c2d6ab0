package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lumipallolabs/walletmap/internal/explorer"
	"github.com/lumipallolabs/walletmap/internal/model"
)

// Issue kinds reported by validate
const (
	issueBelowThreshold = "below_threshold"
	issueUnknownChain   = "unknown_chain"
	issueBadAddress     = "bad_address"
)

type validateIssue struct {
	Kind    string  `json:"kind"`
	Chain   string  `json:"chain,omitempty"`
	Address string  `json:"address,omitempty"`
	Value   float64 `json:"value"`
}

type validateResult struct {
	File      string          `json:"file"`
	Leaves    int             `json:"leaves"`
	Drawn     int             `json:"drawn"`
	Threshold float64         `json:"threshold"`
	Issues    []validateIssue `json:"issues"`
}

type validateOptions struct {
	chart   chartFlags
	strict  bool
	jsonOut bool
}

func init() {
	rootCmd.AddCommand(newValidateCmd())
}

func newValidateCmd() *cobra.Command {
	o := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a tree document for wallets that will not render well",
		Long: `The validate command lists wallets below the value threshold, wallets
on chains without a configured explorer and addresses that are not 20-byte
hex. With --strict it fails when anything is reported.

Example:
  walletmap validate wallets.json
  walletmap validate wallets.json --strict --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, o, args[0])
		},
	}
	o.chart.register(cmd)
	cmd.Flags().BoolVar(&o.strict, "strict", false, "Exit with an error when issues are found")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func runValidate(cmd *cobra.Command, o *validateOptions, path string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := o.chart.options(cmd, cfg)
	if err != nil {
		return err
	}

	root, err := model.Load(path)
	if err != nil {
		return err
	}

	result := checkTree(root, opts.Threshold, opts.Registry)
	result.File = path

	out := cmd.OutOrStdout()
	if o.jsonOut {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		printValidateResult(out, result)
	}

	if o.strict && len(result.Issues) > 0 {
		return fmt.Errorf("%d issue(s) found in %s", len(result.Issues), path)
	}
	return nil
}

// checkTree inspects every leaf of root
func checkTree(root *model.Node, threshold float64, registry *explorer.Registry) validateResult {
	result := validateResult{Threshold: threshold, Issues: []validateIssue{}}

	for _, leaf := range model.Leaves(root) {
		result.Leaves++
		issue := validateIssue{Chain: leaf.Chain, Address: leaf.Address, Value: leaf.Value}

		if leaf.Value < threshold {
			issue.Kind = issueBelowThreshold
			result.Issues = append(result.Issues, issue)
		} else {
			result.Drawn++
		}
		if _, known := registry.Base(leaf.Chain); !known {
			issue.Kind = issueUnknownChain
			result.Issues = append(result.Issues, issue)
		}
		if !explorer.ValidateAddress(leaf.Address) {
			issue.Kind = issueBadAddress
			result.Issues = append(result.Issues, issue)
		}
	}
	return result
}

func printValidateResult(w io.Writer, result validateResult) {
	fmt.Fprintf(w, "\nValidating %s...\n\n", result.File)
	fmt.Fprintf(w, "  %d wallets, %d drawn at threshold %g\n", result.Leaves, result.Drawn, result.Threshold)

	if len(result.Issues) == 0 {
		fmt.Fprintf(w, "\nResult: ✓ VALID\n")
		return
	}

	fmt.Fprintln(w)
	for _, issue := range result.Issues {
		switch issue.Kind {
		case issueBelowThreshold:
			fmt.Fprintf(w, "  ✗ %s 0x%s: value %g is below the threshold\n", issue.Chain, issue.Address, issue.Value)
		case issueUnknownChain:
			fmt.Fprintf(w, "  ✗ %s 0x%s: no explorer for chain %q\n", issue.Chain, issue.Address, issue.Chain)
		case issueBadAddress:
			fmt.Fprintf(w, "  ✗ %s 0x%s: not a 20-byte hex address\n", issue.Chain, issue.Address)
		}
	}
	fmt.Fprintf(w, "\nResult: %d issue(s)\n", len(result.Issues))
}
