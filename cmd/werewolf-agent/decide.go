package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MRamiBalles/werewolf-agent/internal/domain/game"
	"github.com/MRamiBalles/werewolf-agent/internal/service"
	"github.com/spf13/cobra"
)

// decideInput is one request for the decide command.
type decideInput struct {
	Identity service.StartGameRequest `json:"identity"`
	Kind     string                   `json:"kind"` // speak, vote, use-ability, last-words
	Context  *game.RoleContext        `json:"context"`
}

func newDecideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide [file]",
		Short: "Answer a single request read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDecide,

		SilenceUsage: true,
	}
	return cmd
}

func runDecide(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("decide: %w", err)
		}
		defer f.Close()
		r = f
	}
	var in decideInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("decide: invalid input: %w", err)
	}

	d, err := buildDeps(cmd, false)
	if err != nil {
		return err
	}
	defer d.Close()

	out, err := decide(cmd, d.svc, in)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func decide(cmd *cobra.Command, svc *service.PlayerService, in decideInput) (any, error) {
	if err := svc.StartGame(in.Identity); err != nil {
		return nil, err
	}
	if in.Kind != "last-words" && in.Context == nil {
		return nil, fmt.Errorf("decide: %s needs a context", in.Kind)
	}
	ctx := cmd.Context()
	switch in.Kind {
	case "speak":
		return svc.Speak(ctx, in.Context)
	case "vote":
		return svc.Vote(ctx, in.Context)
	case "use-ability":
		return svc.UseAbility(ctx, in.Context)
	case "last-words":
		return svc.LastWords(in.Context), nil
	}
	return nil, fmt.Errorf("decide: unknown kind %q", in.Kind)
}
