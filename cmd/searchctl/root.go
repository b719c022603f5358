package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	criteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/domain/payload"
	sqlcriteria "github.com/krew-solutions/ascetic-search-go/asceticsearch/criteria/infrastructure"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/config"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/search"
	"github.com/krew-solutions/ascetic-search-go/asceticsearch/session"
)

type rootOptions struct {
	ConfigPath string
	Entity     string
}

type recordService = search.Service[search.Record]

// action runs one service call and returns the value printed as JSON.
type action func(svc *recordService, sess session.DbSession, req payload.Request) (any, error)

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "searchctl",
		Short:         "Run condition tree searches against a relational database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ConfigPath == "" {
				return fmt.Errorf("--config is required")
			}
			if opts.Entity == "" {
				return fmt.Errorf("--entity is required")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", os.Getenv("SEARCHCTL_CONFIG"), "configuration file")
	cmd.PersistentFlags().StringVarP(&opts.Entity, "entity", "e", "", "root entity name")

	cmd.AddCommand(newFindCommand(opts))
	cmd.AddCommand(newOneCommand(opts))
	cmd.AddCommand(newFirstCommand(opts))
	cmd.AddCommand(newCountCommand(opts))
	cmd.AddCommand(newExistsCommand(opts))
	cmd.AddCommand(newDeleteCommand(opts))
	cmd.AddCommand(newUpdateCommand(opts))

	return cmd
}

// run loads the configuration, opens one session and prints the result of fn.
// Mutating actions run inside a transaction.
func run(cmd *cobra.Command, opts *rootOptions, requestPath string, mutating bool, fn action) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	req, err := readRequest(cmd.InOrStdin(), requestPath)
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(nil)
	if err != nil {
		return err
	}
	svc, err := newService(cfg, opts.Entity, logger)
	if err != nil {
		return err
	}
	if req.Pageable.Size == 0 {
		req.Pageable.Size = cfg.Search.DefaultPageSize
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, closePool, err := cfg.OpenSessionPool(ctx)
	if err != nil {
		return err
	}
	defer closePool()

	var result any
	queryLogger := session.NewQueryLogger(logger)
	err = pool.Session(ctx, func(s session.Session) error {
		sess := s.(session.DbSession)
		defer queryLogger.Observe(sess)()
		if !mutating {
			result, err = fn(svc, sess, req)
			return err
		}
		return sess.Atomic(func(tx session.Session) error {
			result, err = fn(svc, tx.(session.DbSession), req)
			return err
		})
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func newService(cfg config.Config, entity string, logger *slog.Logger) (*recordService, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}
	return search.NewService[search.Record](
		cfg.NewCompiler(registry),
		sqlcriteria.NewRenderer(dialect),
		entity,
		search.RecordMapper,
		search.WithLogger(logger),
	)
}

// readRequest reads a request document from path, or from stdin when path is "-".
// A missing path is an empty request that matches every row.
func readRequest(stdin io.Reader, path string) (payload.Request, error) {
	var data []byte
	var err error
	switch path {
	case "":
		return payload.Request{}, nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return payload.Request{}, fmt.Errorf("cannot read request: %w", err)
	}
	return payload.DecodeRequest(data)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func requestArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// unpaged drops the page but keeps the sort of a request.
func unpaged(req payload.Request) criteria.Pageable {
	return criteria.Unpaged(req.Pageable.Sort...)
}
