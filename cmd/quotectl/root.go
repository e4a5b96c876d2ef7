package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-quote-service/internal/client"
)

type rootOptions struct {
	url      string
	retries  int
	backoff  time.Duration
	cacheTTL time.Duration
	timeout  time.Duration
}

func (o *rootOptions) client() client.Client {
	var c client.Client = client.New(o.url, nil)
	c = client.WithRetry(c, client.RetryConfig{Retries: o.retries, Backoff: o.backoff})
	if o.cacheTTL > 0 {
		c = client.WithCache(c, client.CacheConfig{TTL: o.cacheTTL})
	}
	return c
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Command line client for the quote API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.url, "url", "http://localhost:3001/api", "base URL of the quote API")
	flags.IntVar(&opts.retries, "retries", 2, "retries for transport errors and 5xx answers")
	flags.DurationVar(&opts.backoff, "backoff", 500*time.Millisecond, "linear backoff step between retries")
	flags.DurationVar(&opts.cacheTTL, "cache-ttl", 0, "cache reads for this long (0 disables)")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(
		newListCmd(opts),
		newGetCmd(opts),
		newCreateCmd(opts),
		newUpdateCmd(opts),
		newDeleteCmd(opts),
	)
	return root
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
