package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"apidesk/internal/model"
	"apidesk/internal/render"
)

// withSession runs fn against durable storage without loading a document.
func (c *CLI) withSession(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := c.open(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, s, args)
	}
}

func (c *CLI) headersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headers",
		Short: "Manage global request headers",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List global headers (sensitive values masked)",
			Args:  cobra.NoArgs,
			RunE: c.withSession(func(cmd *cobra.Command, s *session, _ []string) error {
				render.Headers(cmd.OutOrStdout(), s.bench.Headers())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Add or replace a global header",
			Args:  cobra.ExactArgs(2),
			RunE: c.withSession(func(_ *cobra.Command, s *session, args []string) error {
				return s.bench.SetHeader(args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "rm KEY",
			Short: "Remove a global header",
			Args:  cobra.ExactArgs(1),
			RunE: c.withSession(func(_ *cobra.Command, s *session, args []string) error {
				return s.bench.RemoveHeader(args[0])
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all global headers",
			Args:  cobra.NoArgs,
			RunE: c.withSession(func(_ *cobra.Command, s *session, _ []string) error {
				return s.bench.ClearHeaders()
			}),
		},
	)
	return cmd
}

func (c *CLI) rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage token extraction rules",
		Long: `Token extraction rules copy a value from a successful JSON response into a
global header. A rule applies when the request path matches its pattern
(* matches anything) and the dot-separated JSON path resolves to a string.`,
	}

	var rule model.TokenRule
	var disabled bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a rule",
		Args:  cobra.NoArgs,
		RunE: c.withSession(func(_ *cobra.Command, s *session, _ []string) error {
			rule.Enabled = !disabled
			_, err := s.bench.SaveRules(append(s.bench.Rules(), rule))
			return err
		}),
	}
	add.Flags().StringVar(&rule.PathPattern, "path", "", "request path pattern, e.g. */login (empty matches every path)")
	add.Flags().StringVar(&rule.JSONPath, "json-path", "", "dot-separated path into the response, e.g. data.token")
	add.Flags().StringVar(&rule.HeaderKey, "header", "Authorization", "header to set")
	add.Flags().StringVar(&rule.Prefix, "prefix", "", `value prefix, e.g. "Bearer "`)
	add.Flags().BoolVar(&disabled, "disabled", false, "store the rule disabled")
	_ = add.MarkFlagRequired("json-path")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List rules",
			Args:  cobra.NoArgs,
			RunE: c.withSession(func(cmd *cobra.Command, s *session, _ []string) error {
				render.Rules(cmd.OutOrStdout(), s.bench.Rules())
				return nil
			}),
		},
		add,
		&cobra.Command{
			Use:   "rm INDEX",
			Short: "Remove the rule at INDEX",
			Args:  cobra.ExactArgs(1),
			RunE: c.withSession(func(_ *cobra.Command, s *session, args []string) error {
				rules := s.bench.Rules()
				i, err := index(args[0], len(rules))
				if err != nil {
					return err
				}
				_, err = s.bench.SaveRules(append(rules[:i:i], rules[i+1:]...))
				return err
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all rules",
			Args:  cobra.NoArgs,
			RunE: c.withSession(func(_ *cobra.Command, s *session, _ []string) error {
				return s.bench.ClearRules()
			}),
		},
	)
	return cmd
}

func (c *CLI) envCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "List or select configured environments",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List environments; the selected one is marked with *",
			Args:  cobra.NoArgs,
			RunE: c.withSession(func(cmd *cobra.Command, s *session, _ []string) error {
				envs := s.bench.Environments()
				if len(envs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no environments configured")
					return nil
				}
				render.Environments(cmd.OutOrStdout(), envs, s.bench.CurrentEnv())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "use INDEX",
			Short: "Select the environment at INDEX",
			Args:  cobra.ExactArgs(1),
			RunE: c.withSession(func(_ *cobra.Command, s *session, args []string) error {
				i, err := index(args[0], len(s.bench.Environments()))
				if err != nil {
					return err
				}
				return s.bench.UseEnv(i)
			}),
		},
	)
	return cmd
}

func index(arg string, n int) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", arg)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %d out of range (have %d)", i, n)
	}
	return i, nil
}
