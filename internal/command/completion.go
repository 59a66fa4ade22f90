// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/tfdelta/internal/meta"
)

const bashCompletionScript = `# bash completion for tfdelta
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_tfdelta()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "replay watch stream versions completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local render="--color -c --output -o --tldr"
    local diff="$render --headers --summary -s"
    local state="$diff --identity -i --where -f --detail --show --passphrase --host --org --workspace -w --limit -l"

    case "$cmd" in
        replay)
            local opts="$state --from --to --pick"
            ;;
        watch)
            local opts="$state --interval"
            ;;
        stream)
            local opts="$diff --format"
            COMPREPLY=( $(compgen -f -W "$opts -" -- "$cur") )
            return 0
            ;;
        versions)
            local opts="$render --host --org --workspace -w --limit -l --raw --sort --titles -t"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$render"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
            return 0
            ;;
        --identity|-i)
            COMPREPLY=( $(compgen -W "address instance content" -- "$cur") )
            return 0
            ;;
        --format)
            COMPREPLY=( $(compgen -W "json yaml" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
    fi

    # Otherwise complete the optional RootDir positional.
    COMPREPLY=( $(compgen -o dirnames -- "$cur") )
    return 0
}

complete -F _tfdelta tfdelta
`

const zshCompletionScript = `#compdef tfdelta

_tfdelta() {
  local -a cmds
  cmds=(
    'replay:replay state history as resource events'
    'watch:stream resource events as new state versions appear'
    'stream:diff a stream of string snapshots'
    'versions:list state versions'
    'completion:generate shell completion script'
  )

  local -a render
  render=(
  '(-c --color)'{-c,--color}'[force colored text]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)'
  '--tldr[show tldr page]'
  )

  local -a diff
  diff=(
  $render
  '--headers[print snapshot headers]'
  '(-s --summary)'{-s,--summary}'[print totals]'
  )

  local -a state
  state=(
  $diff
  '(-i --identity)'{-i,--identity}'[resource identity]:identity:(address instance content)'
  '*'{-f,--where}'[HCL filter expression]:expr'
  '--detail[show attribute changes]'
  '*--show[attribute path to print]:path'
  '--passphrase[encrypted state passphrase]:passphrase'
  '--host[TFE/HCP host]:host'
  '--org[TFE/HCP organization]:org'
  '(-w --workspace)'{-w,--workspace}'[workspace]:workspace'
  '(-l --limit)'{-l,--limit}'[limit state versions]:limit'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'tfdelta commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    replay)
      _arguments -C $state \
        '--from[first state version]:spec' \
        '--to[last state version]:spec' \
        '--pick[pick the range interactively]' \
        '::RootDir:_directories'
      ;;
    watch)
      _arguments -C $state \
        '--interval[polling interval]:duration' \
        '::RootDir:_directories'
      ;;
    stream)
      _arguments -C $diff \
        '--format[stream format]:format:(json yaml)' \
        '::FILE:_files'
      ;;
    versions)
      _arguments -C $render \
        '--raw[dump the JSON:API payload]' \
        '--sort[sort columns]:columns' \
        '(-t --titles)'{-t,--titles}'[show titles]' \
        '(-l --limit)'{-l,--limit}'[limit state versions]:limit' \
        '::RootDir:_directories'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $render '*:directory:_directories'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _tfdelta tfdelta
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := writer(cmd)

	shell := cmd.Args().First()
	if shell == "" {
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			shell = "zsh"
		case strings.HasSuffix(sh, "bash"):
			shell = "bash"
		}
	}

	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		fmt.Fprintln(errWriter(cmd), "usage: tfdelta completion [bash|zsh]")
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "tfdelta completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
