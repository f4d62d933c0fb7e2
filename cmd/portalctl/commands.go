package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/config"
	"github.com/cakrabuana/payment-portal/internal/student"
)

func rootCmd() *cobra.Command {
	var policyPath string

	cmd := &cobra.Command{
		Use:           "portalctl",
		Short:         "Inspect the payment portal's access policy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&policyPath, "policy", "", "access policy YAML (default: ACCESS_POLICY_FILE, then built-in)")

	load := func() (access.Policy, error) {
		path := policyPath
		if path == "" {
			cfg, err := config.Load()
			if err != nil {
				return access.Policy{}, err
			}
			path = cfg.AccessPolicyFile
		}
		return access.LoadPolicy(path)
	}

	cmd.AddCommand(gateCmd(load), policyCmd(load), invoiceIDCmd())
	return cmd
}

func gateCmd(load func() (access.Policy, error)) *cobra.Command {
	var (
		path, token, role string
		asJSON            bool
	)

	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Show what the access gate does with a request",
		Example: `  portalctl gate --path /admin/dashboard --token abc --role 2
  portalctl gate --path /payment/xyz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if p.Excludes(path) {
				fmt.Fprintf(out, "%s is excluded from the gate\n", path)
				return nil
			}

			d := p.Evaluate(path, token, role)
			if asJSON {
				return json.NewEncoder(out).Encode(struct {
					Path     string `json:"path"`
					Class    string `json:"class"`
					Outcome  string `json:"outcome"`
					Location string `json:"location,omitempty"`
				}{path, p.Classify(path).String(), d.Outcome.String(), d.Location})
			}

			fmt.Fprintf(out, "class:    %s\n", p.Classify(path))
			fmt.Fprintf(out, "outcome:  %s\n", d.Outcome)
			if d.Redirects() {
				fmt.Fprintf(out, "location: %s\n", d.Location)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "/", "request path")
	cmd.Flags().StringVar(&token, "token", "", "value of the session token cookie")
	cmd.Flags().StringVar(&role, "role", "", "value of the role cookie")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the decision as JSON")
	return cmd
}

func policyCmd(load func() (access.Policy, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the active access policy as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := load()
			if err != nil {
				return err
			}
			raw, err := p.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
}

func invoiceIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice-id",
		Short: "Convert between invoice numbers and detail page ids",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode <no_faktur>",
		Short: "Print the detail page id for an invoice number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := student.EncodeInvoiceID(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n/student/payment-lists/%s\n", id, id)
			return nil
		},
	}, &cobra.Command{
		Use:   "decode <id>",
		Short: "Print the invoice number behind a detail page id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			no, err := student.DecodeInvoiceID(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), no)
			return nil
		},
	})
	return cmd
}
