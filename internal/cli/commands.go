package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentgraph/agentgraph/internal/app/services"
	"github.com/agentgraph/agentgraph/internal/app/usecases"
	"github.com/agentgraph/agentgraph/internal/codegen"
	"github.com/agentgraph/agentgraph/internal/core/project"
	"github.com/agentgraph/agentgraph/internal/log"
	"github.com/agentgraph/agentgraph/pkg/agentgraph"
	"github.com/agentgraph/agentgraph/pkg/prebuilt"
	"github.com/agentgraph/agentgraph/pkg/validation"
)

func (e *env) generate(ctx context.Context, args []string) error {
	fs := newFlagSet("generate")
	var (
		outDir       string
		ordering     string
		workflowName string
		noDisamb     bool
		requirements bool
		workers      int
	)
	fs.StringVar(&outDir, "o", "", "Directory to write <name>.py files to. Default: stdout.")
	fs.StringVar(&ordering, "ordering", e.cfg.Generator.Ordering, "Agent ordering: topological|tiered")
	fs.StringVar(&workflowName, "workflow-name", e.cfg.Generator.WorkflowName, "Name of the trace block.")
	fs.BoolVar(&noDisamb, "no-disambiguate", !e.cfg.Generator.DisambiguateNames, "Keep colliding identifiers.")
	fs.BoolVar(&requirements, "requirements", false, "Also write <name>.requirements.txt (needs -o).")
	fs.IntVar(&workers, "workers", e.cfg.Workers, "Files compiled in parallel.")
	files, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return usagef("generate: at least one project file is required")
	}
	if errs := validation.Struct(validation.GenerateOptions{Ordering: ordering, WorkflowName: workflowName}, ""); len(errs) > 0 {
		return usagef("generate: %v", errs)
	}
	if workers <= 0 {
		return usagef("generate: -workers must be positive")
	}
	if requirements && outDir == "" {
		return usagef("generate: -requirements needs -o")
	}
	if len(files) > 1 && outDir == "" {
		return usagef("generate: -o is required for more than one file")
	}

	opts := codegen.Options{
		Ordering:          codegen.Ordering(ordering),
		DisambiguateNames: !noDisamb,
		WorkflowName:      workflowName,
	}

	jobs, failed := e.readJobs(files)
	if len(jobs) == 0 {
		return errFailed
	}

	batch, err := usecases.NewBatchGenerator(services.NewGenerateService(opts), opts, workers)
	if err != nil {
		return err
	}
	defer batch.Close()

	outcomes, err := batch.Run(ctx, jobs)
	if err != nil {
		return err
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	for _, out := range outcomes {
		if out.Err != nil {
			e.fail.Fprintf(e.stderr, "%s: %v\n", out.Name, out.Err)
			failed = true
			continue
		}
		for _, w := range out.Result.Warnings {
			e.warn.Fprintf(e.stderr, "warning: %s: %s\n", out.Name, w)
		}
		if outDir == "" {
			fmt.Fprint(e.stdout, out.Result.Code)
			continue
		}
		base := baseName(out.Name)
		target := filepath.Join(outDir, base+".py")
		if err := e.writeFile(target, []byte(out.Result.Code)); err != nil {
			e.fail.Fprintf(e.stderr, "%s: %v\n", out.Name, err)
			failed = true
			continue
		}
		if requirements {
			reqPath := filepath.Join(outDir, base+".requirements.txt")
			if err := e.writeFile(reqPath, []byte(strings.Join(out.Result.Requirements, "\n")+"\n")); err != nil {
				e.fail.Fprintf(e.stderr, "%s: %v\n", out.Name, err)
				failed = true
				continue
			}
		}
		e.ok.Fprintf(e.stdout, "%s -> %s\n", out.Name, target)
		log.Debugf("generated %s: %d workflows, %d warnings", out.Name, out.Result.Stats.Workflows, len(out.Result.Warnings))
	}
	if failed {
		return errFailed
	}
	return nil
}

func (e *env) validate(args []string) error {
	fs := newFlagSet("validate")
	files, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return usagef("validate: at least one project file is required")
	}

	failed := false
	for _, path := range files {
		doc, err := e.load(path)
		if err != nil {
			e.fail.Fprintf(e.stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		errs := validation.ValidateDocument(doc)
		if len(errs) == 0 {
			e.ok.Fprintf(e.stdout, "%s: ok\n", path)
			continue
		}
		failed = true
		for _, ve := range errs {
			e.fail.Fprintf(e.stdout, "%s: %s: %s [%s]\n", path, ve.Field, ve.Message, ve.Code)
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

func (e *env) requirements(args []string) error {
	fs := newFlagSet("requirements")
	files, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return usagef("requirements: exactly one project file is required")
	}
	doc, err := e.load(files[0])
	if err != nil {
		return fmt.Errorf("%s: %w", files[0], err)
	}
	for _, req := range codegen.Requirements(doc.Graph()) {
		fmt.Fprintln(e.stdout, req)
	}
	return nil
}

func (e *env) newProject(args []string) error {
	fs := newFlagSet("new")
	var (
		out  string
		name string
		cfg  prebuilt.Config
	)
	fs.StringVar(&out, "o", "", "File to write. Default: derived from the project name.")
	fs.StringVar(&name, "name", project.DefaultName, "Project name.")
	fs.StringVar(&cfg.AgentName, "agent", "", "Name of the primary agent.")
	fs.StringVar(&cfg.Input, "input", "", "Runner input.")
	fs.BoolVar(&cfg.Trace, "trace", false, "Wrap the workflow in a trace block.")
	args, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usagef("new: exactly one template name is required")
	}
	if _, ok := prebuilt.DefaultRegistry.Get(args[0]); !ok {
		return usagef("new: unknown template %q (see agentgraph templates)", args[0])
	}

	data, err := agentgraph.Template(args[0], cfg, name)
	if err != nil {
		return err
	}
	if out == "" {
		out = project.FileName(name)
	}
	if err := e.writeFile(out, data); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	e.ok.Fprintf(e.stdout, "%s -> %s\n", args[0], out)
	return nil
}

func (e *env) templates() {
	for _, name := range prebuilt.DefaultRegistry.Names() {
		b, _ := prebuilt.DefaultRegistry.Get(name)
		fmt.Fprintf(e.stdout, "%-16s %s\n", name, b.Description())
	}
}

func (e *env) load(path string) (*project.Document, error) {
	data, err := e.readFile(path)
	if err != nil {
		return nil, err
	}
	return project.Import(data)
}

// readJobs reads every file, reporting unreadable ones.
func (e *env) readJobs(files []string) ([]usecases.Job, bool) {
	jobs := make([]usecases.Job, 0, len(files))
	failed := false
	for _, path := range files {
		data, err := e.readFile(path)
		if err != nil {
			e.fail.Fprintf(e.stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		jobs = append(jobs, usecases.Job{Name: path, Data: data})
	}
	return jobs, failed
}

// baseName strips the directory and the .json extension.
func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
