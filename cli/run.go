package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DavideSigurta/Donatio-sub000/scenario"
)

// replay loads the scenario, opens the configured backend and runs every step.
// The returned error is only set for setup failures; expectation mismatches come
// back as runErr so the caller can still render what happened.
func replay(cmd *cobra.Command, a *app, path string) (r *scenario.Runner, results []scenario.Result, runErr error, err error) {
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	backend, err := a.cfg.Open(cmd.Context(), a.log)
	if err != nil {
		return nil, nil, nil, err
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			a.log.Warn("closing backend", "err", cerr)
		}
	}()

	r, err = scenario.NewRunner(sc, backend.Store, a.cfg.EngineOptions(a.log), a.cfg.CreatorRegistry(), backend.Events)
	if err != nil {
		return nil, nil, nil, err
	}
	a.log.Info("replaying scenario", "name", sc.Name, "steps", len(sc.Steps), "backend", a.cfg.State.Backend)
	results, runErr = r.Run(cmd.Context(), sc.Steps)
	return r, results, runErr, nil
}

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml|scenario.toml>",
		Short: "Replay a scenario and print every step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			_, results, runErr, err := replay(cmd, a, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.json {
				data, err := stepsJSON(results)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				renderSteps(out, results)
			}
			if runErr != nil {
				if errors.Is(runErr, scenario.ErrExpectation) {
					fmt.Fprintln(cmd.ErrOrStderr(), failStyle.Sprint(runErr.Error()))
				}
				return runErr
			}
			return nil
		},
	}
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <scenario.yaml|scenario.toml>",
		Short: "Replay a scenario and show the resulting campaigns and proposals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			r, _, runErr, err := replay(cmd, a, args[0])
			if err != nil {
				return err
			}
			snap, err := takeSnapshot(cmd.Context(), r)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.json {
				data, err := snap.JSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			} else {
				snap.Render(out)
			}
			return runErr
		},
	}
}
