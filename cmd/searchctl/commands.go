package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/payload"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
)

func newFindCommand(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "find [request.json|-]",
		Short: "Print one page of matching rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, requestArg(args), false,
				func(svc *recordService, sess session.DbSession, req payload.Request) (any, error) {
					pageable := req.Pageable
					if all {
						pageable = unpaged(req)
					}
					return svc.FindAll(sess, req.Condition, pageable)
				})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "ignore paging and print every matching row")
	return cmd
}

func newOneCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "one [request.json|-]",
		Short: "Print the only matching row, failing when several match",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, requestArg(args), false,
				func(svc *recordService, sess session.DbSession, req payload.Request) (any, error) {
					return svc.FindOne(sess, req.Condition)
				})
		},
	}
}

func newFirstCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "first [request.json|-]",
		Short: "Print the first matching row in the requested sort order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, requestArg(args), false,
				func(svc *recordService, sess session.DbSession, req payload.Request) (any, error) {
					return svc.FindFirst(sess, req.Condition, req.Pageable.Sort...)
				})
		},
	}
}

func newCountCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "count [request.json|-]",
		Short: "Print the number of matching rows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, requestArg(args), false,
				func(svc *recordService, sess session.DbSession, req payload.Request) (any, error) {
					return svc.Count(sess, req.Condition)
				})
		},
	}
}

func newExistsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exists [request.json|-]",
		Short: "Print whether any row matches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, requestArg(args), false,
				func(svc *recordService, sess session.DbSession, req payload.Request) (any, error) {
					return svc.Exists(sess, req.Condition)
				})
		},
	}
}

type affected struct {
	Affected int64 `json:"affected"`
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete [request.json|-]",
		Short: "Delete every matching row",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, requestArg(args), true,
				func(svc *recordService, sess session.DbSession, req payload.Request) (any, error) {
					if err := requireCondition("delete", req, all); err != nil {
						return nil, err
					}
					n, err := svc.Delete(sess, req.Condition)
					return affected{Affected: n}, err
				})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "allow a request without a condition to delete every row")
	return cmd
}

func newUpdateCommand(opts *rootOptions) *cobra.Command {
	var (
		set string
		all bool
	)
	cmd := &cobra.Command{
		Use:   "update --set '{\"field\": value}' [request.json|-]",
		Short: "Assign values to every matching row",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := payload.DecodeAssignments([]byte(set))
			if err != nil {
				return fmt.Errorf("--set: %w", err)
			}
			return run(cmd, opts, requestArg(args), true,
				func(svc *recordService, sess session.DbSession, req payload.Request) (any, error) {
					if err := requireCondition("update", req, all); err != nil {
						return nil, err
					}
					n, err := svc.Update(sess, req.Condition, data)
					return affected{Affected: n}, err
				})
		},
	}
	cmd.Flags().StringVar(&set, "set", "", "JSON object of attribute values")
	cmd.Flags().BoolVar(&all, "all", false, "allow a request without a condition to update every row")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

// requireCondition refuses an unconditional mutation unless --all was given.
func requireCondition(verb string, req payload.Request, all bool) error {
	if req.Condition == nil && !all {
		return fmt.Errorf("refusing to %s every row without a condition; pass --all to confirm", verb)
	}
	return nil
}
