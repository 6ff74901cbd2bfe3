package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/persona"
	"github.com/simplcli/dobby/internal/router"
)

// runREPL drives the interactive loop over an active session: read a
// line, route it, recall relevant memories, dispatch, and record both
// sides of the exchange. A failed dispatch is reported and nothing is
// recorded, so the user can simply retry.
func runREPL(ctx context.Context, a *app, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "!quit" || line == "!exit" {
			break
		}
		if line == "!clear" || line == "!reset" {
			if err := a.manager.Reset(); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			fmt.Println("Context cleared.")
			continue
		}

		resp, err := handleLine(ctx, a, line)
		if err != nil {
			// Dispatch failures are user-visible but not fatal; the
			// turn was not recorded and can be retried as-is.
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(resp.Text)
		offerCodeSave(scanner, resp)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	fmt.Println("Bye.")
	return nil
}

// handleLine runs one exchange end to end. Both turns are recorded
// only after the dispatch succeeded, so a failed exchange leaves the
// transcript untouched.
func handleLine(ctx context.Context, a *app, line string) (*agent.Response, error) {
	decision := route(a, line)
	a.log.Debug("routed",
		zap.String("persona", decision.Persona),
		zap.Float64("confidence", decision.Confidence),
		zap.Strings("matched", decision.Matched),
		zap.Bool("fallback", decision.Fallback))

	recalled, err := a.manager.Recall(ctx, line, a.cfg.Memory.MaxRecall)
	if err != nil {
		return nil, err
	}

	sess := a.manager.Session()
	resp, err := a.dispat.Dispatch(ctx, decision, line, sess.Mode, sess.Turns, recalled)
	if err != nil {
		return nil, err
	}

	if warned, err := a.manager.Record(ctx, agent.RoleUser, line, ""); err != nil {
		return nil, err
	} else if warned {
		fmt.Fprintln(os.Stderr, "warning: long-term memory unavailable, recorded this session only")
	}
	if _, err := a.manager.Record(ctx, agent.RoleAgent, resp.Text, decision.Persona); err != nil {
		return nil, err
	}
	return resp, nil
}

// offerCodeSave lets the user save a generated snippet to a file. Only
// the code persona produces a payload, so anything else passes through
// silently.
func offerCodeSave(scanner *bufio.Scanner, resp *agent.Response) {
	if len(resp.Payload) == 0 {
		return
	}
	var payload persona.CodePayload
	if err := json.Unmarshal(resp.Payload, &payload); err != nil || payload.Code == "" {
		return
	}

	fmt.Print("Save code to a file? Enter a path or press Enter to skip: ")
	if !scanner.Scan() {
		return
	}
	path := strings.TrimSpace(scanner.Text())
	if path == "" {
		return
	}
	if err := os.WriteFile(path, []byte(payload.Code+"\n"), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: save code: %v\n", err)
		return
	}
	fmt.Printf("Saved %s code to %s\n", payload.Language, path)
}

// route classifies the line. A cryptocurrency address anywhere in the
// input short-circuits keyword scoring: an address is unambiguous in a
// way no keyword is.
func route(a *app, line string) router.Decision {
	if addr, _ := persona.DetectAddress(line); addr != "" {
		return router.Decision{
			Persona:    "wallet",
			Confidence: 0.95,
			Matched:    []string{addr},
		}
	}
	return a.router.Route(line)
}
