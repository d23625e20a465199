package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Duly330AI/Matheheftt-sub000/internal/engine/builtin"
	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
	"github.com/Duly330AI/Matheheftt-sub000/internal/session"
)

func newEnginesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the registered problem engines",
		RunE: func(cmd *cobra.Command, args []string) error {
			engines := builtin.NewRegistry().List()
			out := cmd.OutOrStdout()

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(out).Encode(engines)
			}
			for _, info := range engines {
				fmt.Fprintf(out, "%-20s %s\n", info.ID, info.Description)
			}
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <engine>",
		Short: "Print the worked grid and step list of one problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := paramsFlag(cmd)
			if err != nil {
				return err
			}

			_, result, err := builtin.NewRegistry().Generate(args[0], params)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprint(out, renderGrid(result.Grid, true))
			fmt.Fprintln(out)
			for i, step := range result.Steps {
				fmt.Fprintf(out, "%2d. %-18s %s = %s\n", i+1, step.Kind, cellList(step.Targets), strings.Join(step.ExpectedValues, " "))
			}
			return nil
		},
	}
	cmd.Flags().String("params", "{}", "Engine parameters as JSON")
	return cmd
}

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <engine>",
		Short: "Solve a problem interactively",
		Long: `Reads one command per line:

  <cell-id> <value>   write a value, e.g. "r4-c4 3"
  next                continue after a solved step
  undo                revert the last action
  clear               blank every input cell
  quit                stop`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := paramsFlag(cmd)
			if err != nil {
				return err
			}

			eng, cfg, err := builtin.NewRegistry().Build(args[0], params)
			if err != nil {
				return err
			}
			ctrl := session.New(eng)
			if err := ctrl.Start(cfg); err != nil {
				return err
			}
			return runSolve(ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().String("params", "{}", "Engine parameters as JSON")
	return cmd
}

// runSolve feeds stdin commands into the controller until the problem is
// finished, the input ends or the user quits.
func runSolve(ctrl *session.Controller, in io.Reader, out io.Writer) error {
	printState(out, ctrl.State())

	scanner := bufio.NewScanner(in)
	for ctrl.Status() != session.StatusFinished {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "quit", "exit":
			return nil
		case "next":
			err = ctrl.Next()
		case "undo":
			if !ctrl.Undo() {
				err = errors.New("nothing to undo")
			}
		case "clear":
			err = ctrl.ClearUserInputs()
		default:
			value := ""
			if len(fields) > 1 {
				value = fields[1]
			}
			var v models.ValidationResult
			if v, err = ctrl.Input(fields[0], value); err == nil {
				printValidation(out, v)
			}
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		printState(out, ctrl.State())
	}

	if ctrl.Status() == session.StatusFinished {
		fmt.Fprintf(out, "finished with %d mistake(s)\n", ctrl.State().Mistakes)
	}
	return scanner.Err()
}

func printState(out io.Writer, state session.State) {
	fmt.Fprint(out, renderGrid(state.Grid, false))
	if step, ok := state.Step(); ok {
		fmt.Fprintf(out, "step %d/%d %s: %s [%s]\n", state.StepIndex+1, state.StepCount(), step.Kind, cellList(step.Targets), state.Status)
	}
}

func printValidation(out io.Writer, v models.ValidationResult) {
	switch {
	case v.Correct:
		fmt.Fprintln(out, "correct")
	case v.Pending:
		fmt.Fprintln(out, "...")
	default:
		msg := string(v.ErrorType)
		if h := v.PrimaryHint(); h != nil {
			msg += " (" + h.MessageKey + ")"
		}
		fmt.Fprintln(out, "wrong: "+msg)
	}
}

// renderGrid draws one character column per cell; empty editable cells are
// shown as "_" unless solved is set, in which case expected values are used.
func renderGrid(g models.Grid, solved bool) string {
	var b strings.Builder
	for _, row := range g {
		for _, cell := range row {
			value := cell.Value
			if solved && cell.Editable {
				value = cell.Expected
			}
			switch {
			case cell.Role == models.RoleSeparator:
				value = "-"
			case value == "" && cell.Editable:
				value = "_"
			case value == "":
				value = " "
			}
			fmt.Fprintf(&b, "%2s", value)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func cellList(ps []models.Position) string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = models.CellID(p.Row, p.Col)
	}
	return strings.Join(ids, ",")
}

func paramsFlag(cmd *cobra.Command) (map[string]any, error) {
	raw, _ := cmd.Flags().GetString("params")
	params := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, fmt.Errorf("invalid --params: %w", err)
	}
	return params, nil
}
