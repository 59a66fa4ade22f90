// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Command docsgen writes the markdown and tldr pages for each tfdelta
// command from the command tree itself, plus the worked examples kept in
// <docs>/examples.yaml.
//
//	go run ./tools/docsgen docs
package main

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/tfdelta/internal/command"
	"github.com/tfctl/tfdelta/internal/log"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Example is one worked invocation of a command.
type Example struct {
	Command     string `yaml:"command"`
	Description string `yaml:"description"`
}

// Flag describes one command flag for the templates.
type Flag struct {
	Syntax      string
	Description string
	Env         string
}

// Page is the data handed to every template.
type Page struct {
	ID          string
	Short       string
	Usage       string
	Description string
	Flags       []Flag
	Examples    []Example
	Date        string
	Version     string
}

type output struct {
	template string
	folder   string
	prefix   string
	suffix   string
}

var outputs = []output{
	{template: "templates/command.md.tmpl", folder: "commands", suffix: ".md"},
	{template: "templates/tldr.md.tmpl", folder: "tldr", prefix: "tfdelta-", suffix: ".md"},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: docsgen <docs dir>")
		os.Exit(1)
	}

	if err := generate(os.Args[1], version(), os.Stdout); err != nil {
		log.WithError(err).Error("docsgen failed")
		os.Exit(1)
	}
}

func generate(docs string, ver string, progress io.Writer) error {
	examples, err := loadExamples(filepath.Join(docs, "examples.yaml"))
	if err != nil {
		return err
	}

	app, err := command.InitApp([]string{"tfdelta"})
	if err != nil {
		return err
	}

	tmpl, err := template.ParseFS(templates, "templates/*.tmpl")
	if err != nil {
		return err
	}

	date := time.Now().Format("January 2, 2006")
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}
		page := pageOf(cmd, examples[cmd.Name])
		page.Date = date
		page.Version = ver

		for _, o := range outputs {
			dir := filepath.Join(docs, o.folder)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(dir, o.prefix+cmd.Name+o.suffix)
			fmt.Fprintln(progress, "Generating", path)
			if err := render(tmpl, filepath.Base(o.template), path, page); err != nil {
				return err
			}
		}
	}

	return nil
}

func render(tmpl *template.Template, name string, path string, page Page) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := tmpl.ExecuteTemplate(f, name, page); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// loadExamples reads the examples file, keyed by command name. A missing file
// means no examples.
func loadExamples(path string) (map[string][]Example, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]Example{}, nil
	}
	if err != nil {
		return nil, err
	}

	var examples map[string][]Example
	if err := yaml.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return examples, nil
}

func pageOf(cmd *cli.Command, examples []Example) Page {
	page := Page{
		ID:          cmd.Name,
		Short:       cmd.Usage,
		Usage:       cmd.UsageText,
		Description: cmd.Description,
		Examples:    examples,
	}
	if page.Usage == "" {
		page.Usage = "tfdelta " + cmd.Name + " [options]"
	}

	for _, f := range cmd.Flags {
		if v, ok := f.(cli.VisibleFlag); ok && !v.IsVisible() {
			continue
		}
		page.Flags = append(page.Flags, flagOf(f))
	}
	slices.SortFunc(page.Flags, func(a, b Flag) int {
		return strings.Compare(strings.TrimLeft(a.Syntax, "-"), strings.TrimLeft(b.Syntax, "-"))
	})

	return page
}

func flagOf(f cli.Flag) Flag {
	var names []string
	for _, n := range f.Names() {
		if len(n) == 1 {
			names = append(names, "-"+n)
		} else {
			names = append(names, "--"+n)
		}
	}

	flag := Flag{Syntax: strings.Join(names, ", ")}
	if d, ok := f.(cli.DocGenerationFlag); ok {
		flag.Description = d.GetUsage()
		if d.TakesValue() {
			flag.Syntax += " <value>"
		}
		if env := d.GetEnvVars(); len(env) > 0 {
			flag.Env = strings.Join(env, ", ")
		}
	}
	return flag
}

// version returns the latest git tag without its leading "v", or "dev".
func version() string {
	out, err := exec.Command("git", "describe", "--tags", "--abbrev=0").Output()
	if err != nil {
		return "dev"
	}
	return strings.TrimPrefix(strings.TrimSpace(string(out)), "v")
}
