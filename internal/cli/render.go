package cli

import (
	"github.com/spf13/cobra"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	DOT bool
}

// Rendering is the output of the render command
type Rendering struct {
	Definition string `json:"definition"`
	Format     string `json:"format"`
	Diagram    string `json:"diagram"`
}

// Text implements Texter
func (r Rendering) Text() string {
	return r.Diagram
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <definition>",
		Short: "Draw a machine definition",
		Long: `Render a machine definition as a Mermaid state diagram, or as a
Graphviz digraph with --dot. Final states are marked.

Examples:
  kinetic render door.yaml > door.mmd
  kinetic render door.cue --dot | dot -Tsvg > door.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.DOT, "dot", false, "render Graphviz DOT instead of Mermaid")
	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	def, err := loadDefinition(f, path)
	if err != nil {
		return err
	}

	r := Rendering{Definition: path, Format: "mermaid"}
	if opts.DOT {
		r.Format = "dot"
		r.Diagram = def.ToDOT()
	} else {
		r.Diagram = def.ToMermaid()
	}
	return f.Success(r)
}
