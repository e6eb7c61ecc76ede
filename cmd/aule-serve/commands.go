package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/manthysbr/auleServe/internal/adapters/providers"
	appconfig "github.com/manthysbr/auleServe/internal/config"
	"github.com/manthysbr/auleServe/internal/core/domain"
	"github.com/manthysbr/auleServe/internal/core/services"
)

var errReceiveUnsupported = errors.New("receive requires the servicebus transport")

func (c *cli) newRunCmd() *cobra.Command {
	var withToolPrompt, noDispatch bool

	cmd := &cobra.Command{
		Use:   "run [task]",
		Short: "Ask the model to solve a task and dispatch the tool calls it emits",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}

			chat, err := providers.BuildChatClient(c.cfg)
			if err != nil {
				return err
			}

			systemPrompt := c.cfg.LLM.SystemPrompt
			if withToolPrompt {
				toolPrompt, err := services.BuildToolPrompt()
				if err != nil {
					return err
				}
				systemPrompt = strings.TrimSpace(systemPrompt + "\n\n" + toolPrompt)
			}

			var task string
			if len(args) == 1 {
				task = args[0]
			}

			parser := services.NewResponseParser(c.logger)
			if noDispatch {
				svc := services.NewInferenceService(c.logger, chat, parser, nil, systemPrompt)
				result, err := svc.Run(cmd.Context(), task)
				if err != nil {
					return err
				}
				return writeJSON(c.stdout, result)
			}

			return c.withChannels(cmd.Context(), func(ctx context.Context, router *services.ChannelRouter) error {
				svc := services.NewInferenceService(c.logger, chat, parser, router, systemPrompt)
				result, err := svc.Run(ctx, task)
				if err != nil {
					return err
				}
				return writeJSON(c.stdout, result)
			})
		},
	}
	cmd.Flags().BoolVar(&withToolPrompt, "with-tool-prompt", false, "append the tool tag grammar and schemas to the system prompt")
	cmd.Flags().BoolVar(&noDispatch, "no-dispatch", false, "parse tool calls without publishing them")
	return cmd
}

// parseOutput is printed by parse --dispatch.
type parseOutput struct {
	RequestID string                 `json:"requestId"`
	Response  domain.ResponseRecord  `json:"response"`
	Dispatch  *domain.DispatchReport `json:"dispatch"`
}

func (c *cli) newParseCmd() *cobra.Command {
	var dispatch bool

	cmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Parse model output offline and print the structured record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := c.readInput(args)
			if err != nil {
				return err
			}

			parser := services.NewResponseParser(c.logger)
			if !dispatch {
				return writeJSON(c.stdout, parser.Parse(cmd.Context(), raw))
			}

			if err := c.loadConfig(); err != nil {
				return err
			}
			requestID := uuid.NewString()
			ctx := services.ContextWithRequestID(cmd.Context(), requestID)
			record := parser.Parse(ctx, raw)

			return c.withChannels(ctx, func(ctx context.Context, router *services.ChannelRouter) error {
				report := router.Dispatch(ctx, record.ToolCalls, requestID)
				return writeJSON(c.stdout, parseOutput{RequestID: requestID, Response: record, Dispatch: &report})
			})
		},
	}
	cmd.Flags().BoolVar(&dispatch, "dispatch", false, "also publish valid tool calls to their channels")
	return cmd
}

func (c *cli) newReceiveCmd() *cobra.Command {
	var (
		channel     string
		maxMessages int
		wait        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Drain messages from a channel queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ch := domain.Channel(strings.ToLower(strings.TrimSpace(channel)))
			if ch != domain.ChannelWeb && ch != domain.ChannelAzure {
				return fmt.Errorf("unknown channel %q: want web or azure", channel)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}

			channels, err := providers.BuildChannels(c.logger, c.cfg)
			if err != nil {
				return err
			}
			if channels.Bus != nil {
				channels.Bus.Close()
			}
			if channels.Receiver == nil {
				return errReceiveUnsupported
			}

			msgs, err := channels.Receiver.Receive(cmd.Context(), ch, maxMessages, wait)
			if err != nil {
				return err
			}
			c.logger.Info("receive finished", "channel", ch, "messages", len(msgs))
			return writeJSON(c.stdout, msgs)
		},
	}
	cmd.Flags().StringVar(&channel, "channel", string(domain.ChannelAzure), "channel to drain: web or azure")
	cmd.Flags().IntVar(&maxMessages, "max", 1, "maximum number of messages")
	cmd.Flags().DurationVar(&wait, "wait", 5*time.Second, "how long to wait for messages")
	return cmd
}

func (c *cli) newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the tool tag grammar and payload schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prompt, err := services.BuildToolPrompt()
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.stdout, prompt)
			return err
		},
	}
}

func (c *cli) newEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <value>",
		Short: "Encrypt a secret for use as an enc: config value",
		Long:  "Encrypt a secret with AULE_SECRET_KEY, or with the key file (created on first use).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sk, err := appconfig.LoadOrCreateSecretKey(c.keyPath)
			if err != nil {
				return err
			}
			enc, err := sk.Encrypt(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.stdout, enc)
			return err
		},
	}
}

// withChannels builds the configured transport and a router on top of it,
// then runs fn. On the memory transport every delivered envelope is logged
// until fn returns.
func (c *cli) withChannels(ctx context.Context, fn func(ctx context.Context, router *services.ChannelRouter) error) error {
	channels, err := providers.BuildChannels(c.logger, c.cfg)
	if err != nil {
		return err
	}
	router := services.NewChannelRouter(c.logger, channels.Broker, c.cfg.Channels.PublishTimeout)

	if channels.Bus == nil {
		return fn(ctx, router)
	}

	g, gCtx := errgroup.WithContext(ctx)
	for _, ch := range []domain.Channel{domain.ChannelWeb, domain.ChannelAzure} {
		sub, _ := channels.Bus.Subscribe(ch)
		g.Go(func() error {
			for env := range sub {
				requestID := ""
				if env.RequestID != nil {
					requestID = *env.RequestID
				}
				c.logger.Info("envelope delivered", "channel", ch, "type", env.Type, "request_id", requestID)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer channels.Bus.Close()
		return fn(gCtx, router)
	})
	return g.Wait()
}

func (c *cli) readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
