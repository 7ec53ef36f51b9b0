package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MarcoPoloResearchLab/codenotes/internal/client"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const deletePrompt = "Are you sure you want to delete this note? [y/N] "

type formFlags struct {
	name     string
	code     string
	codeFile string
	attach   string
	detach   bool
}

func (f *formFlags) register(cmd *cobra.Command, withDetach bool) {
	cmd.Flags().StringVar(&f.name, "name", "", "Note name")
	cmd.Flags().StringVar(&f.code, "code", "", "Note code")
	cmd.Flags().StringVar(&f.codeFile, "code-file", "", "Read the code from a file (- for stdin)")
	cmd.Flags().StringVar(&f.attach, "attach", "", "Attach a local file (10 MiB max)")
	cmd.MarkFlagsMutuallyExclusive("code", "code-file")
	if withDetach {
		cmd.Flags().BoolVar(&f.detach, "detach", false, "Remove the current attachment")
		cmd.MarkFlagsMutuallyExclusive("attach", "detach")
	}
}

// apply copies the flags the user set onto the editor. Unset flags leave the
// loaded values alone.
func (f *formFlags) apply(cmd *cobra.Command, editor *client.Editor, in io.Reader) error {
	if cmd.Flags().Changed("name") {
		editor.SetName(f.name)
	}
	switch {
	case cmd.Flags().Changed("code"):
		editor.SetCode(f.code)
	case cmd.Flags().Changed("code-file"):
		code, err := readCode(f.codeFile, in)
		if err != nil {
			return err
		}
		editor.SetCode(code)
	}
	if f.attach != "" {
		if err := editor.AttachFile(f.attach); err != nil {
			return err
		}
	}
	if f.detach {
		editor.Detach()
	}
	return nil
}

func readCode(path string, in io.Reader) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read code from stdin: %w", err)
		}
		return string(content), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read code file: %w", err)
	}
	return string(content), nil
}

func (a *app) newSaveCommand() *cobra.Command {
	var form formFlags
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create a new note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := client.NewEditor(a.client, a.cache)
			if err := form.apply(cmd, editor, a.streams.In); err != nil {
				return err
			}
			return a.submit(cmd, editor)
		},
	}
	form.register(cmd, false)
	return cmd
}

func (a *app) newEditCommand() *cobra.Command {
	var form formFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Replace a note's fields; unset flags keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			editor := client.NewEditor(a.client, a.cache)
			if err := editor.Load(cmd.Context(), id); err != nil {
				return err
			}
			if err := form.apply(cmd, editor, a.streams.In); err != nil {
				return err
			}
			return a.submit(cmd, editor)
		},
	}
	form.register(cmd, true)
	return cmd
}

func (a *app) submit(cmd *cobra.Command, editor *client.Editor) error {
	result, err := editor.Submit(cmd.Context())
	if err != nil && !errors.Is(err, client.ErrRefreshFailed) {
		return err
	}
	if err != nil {
		a.logger.Warn("note list refresh failed after save", zap.Error(err))
	}
	fmt.Fprintf(a.streams.Out, "%s (id %d)\n", result.Message, result.NoteID)
	return nil
}

func (a *app) newDeleteCommand() *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a note after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}
			if !assumeYes && !a.confirm(deletePrompt) {
				fmt.Fprintln(a.streams.Out, "Delete cancelled.")
				return nil
			}
			if err := client.DeleteNote(cmd.Context(), a.client, nil, id); err != nil {
				return err
			}
			fmt.Fprintln(a.streams.Out, "Note deleted successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func (a *app) confirm(prompt string) bool {
	fmt.Fprint(a.streams.Out, prompt)
	if a.streams.In == nil {
		return false
	}
	answer, err := bufio.NewReader(a.streams.In).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
