package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-quote-service/internal/client"
)

// quotectl list
func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			qs, err := opts.client().List(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), qs)
		},
	}
}

// quotectl get <id>
func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			q, err := opts.client().Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}
}

// quotectl create -f quote.json
func newCreateCmd(opts *rootOptions) *cobra.Command {
	var file, key string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a quote from a JSON document (- for stdin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readRequest(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			if key != "" {
				ctx = client.WithIdempotencyKey(ctx, key)
			}

			q, err := opts.client().Create(ctx, in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the quote")
	cmd.Flags().StringVar(&key, "idempotency-key", "", "Idempotency-Key to send (generated when empty)")
	return cmd
}

// quotectl update <id> -f patch.json
func newUpdateCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply a partial update from a JSON document (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readRequest(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			q, err := opts.client().Update(ctx, args[0], in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), q)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with the changes")
	return cmd
}

// quotectl delete <id>
func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			if err := opts.client().Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func readRequest(stdin io.Reader, file string) (client.QuoteRequest, error) {
	var r io.Reader = stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return client.QuoteRequest{}, fmt.Errorf("open %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}

	var in client.QuoteRequest
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("parse quote json: %w", err)
	}
	return in, nil
}
