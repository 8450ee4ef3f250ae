package main

import "fmt"

func completionMain(args []string) {
	shell := "bash"
	if len(args) > 0 && args[0] != "" {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	default:
		log.Fatalf("unsupported shell: %s (use bash or zsh)", shell)
	}
}

const bashCompletion = `
_echo_console_completions()
{
    local cur prev
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "ping replay init features completion --config --model --models --url --session --c --enable --disable" -- "$cur") )
        return 0
    fi

    case "${COMP_WORDS[1]}" in
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        ping)
            COMPREPLY=( $(compgen -W "--config --url --token --timeout --c" -- "$cur") )
            ;;
        init)
            COMPREPLY=( $(compgen -W "--config --model --models --url --session --c --force" -- "$cur") )
            ;;
        replay)
            COMPREPLY=( $(compgen -f -W "--config --model --models --c --tui --color" -- "$cur") )
            ;;
        *)
            COMPREPLY=( $(compgen -W "--config --model --m --models --url --session --c" -- "$cur") )
            ;;
    esac
}
complete -F _echo_console_completions echo-console
`

const zshCompletion = `
#compdef echo-console
_echo_console() {
    local -a subcmds
    subcmds=('ping:check the event stream' 'replay:replay a JSONL event file' 'init:write a starter config' 'features:list feature flags' 'completion:print shell completions')
    if (( CURRENT == 2 )); then
        _describe 'command' subcmds
        return
    fi
    case "$words[2]" in
        completion)
            _values 'shell' bash zsh
            ;;
        ping)
            _arguments \
                '--config[Path to config file]' \
                '--url[Stream url override]' \
                '--token[Bearer token override]' \
                '--timeout[Timeout seconds]' \
                '--c[Config key=value override]'
            ;;
        init)
            _arguments \
                '--config[Path to config file]' \
                '--url[Stream url]' \
                '--force[Overwrite an existing file]' \
                '--c[Config key=value override]'
            ;;
        replay)
            _arguments \
                '--config[Path to config file]' \
                '--model[Model override]' \
                '--models[Models offered by the picker]' \
                '--c[Config key=value override]' \
                '--tui[Replay inside the terminal UI]' \
                '--color[Keep ANSI styling]' \
                '*:events file:_files'
            ;;
        *)
            _arguments \
                '--config[Path to config file]' \
                '--model[Model override]' \
                '--m[Alias for --model]' \
                '--models[Models offered by the picker]' \
                '--url[Stream url]' \
                '--session[Session id]' \
                '--c[Config key=value override]'
            ;;
    esac
}
_echo_console "$@"
`
