package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_svault() {
    local cur prev words cword
    _init_completion || return

    local commands="save load show status ls diff forget compact keyring help completion"
    local common="-f --file -v --verbose --format"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    case "$prev" in
        -f|--file|-i|--input)
            _filedir
            return
            ;;
        --format)
            COMPREPLY=($(compgen -W "json yaml" -- "$cur"))
            return
            ;;
    esac

    local cmd="${words[1]}"
    case "$cmd" in
        save)
            COMPREPLY=($(compgen -W "$common -i --input --memory --time --parallelism --force" -- "$cur"))
            ;;
        diff)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "$common" -- "$cur"))
            else
                _filedir
            fi
            ;;
        forget)
            if [[ "$cur" == -* ]]; then
                COMPREPLY=($(compgen -W "$common --delete --force" -- "$cur"))
            else
                # Complete with vaults from the index
                local vaults
                vaults=$(svault ls 2>/dev/null | grep -E '^\s+[*>!] ' | sed 's/^\s*[*>!] //' | sed 's/ (.*//')
                COMPREPLY=($(compgen -W "$vaults" -- "$cur"))
            fi
            ;;
        load|show)
            COMPREPLY=($(compgen -W "$common --key" -- "$cur"))
            ;;
        status|ls|compact)
            COMPREPLY=($(compgen -W "$common" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _svault svault
`

const zshCompletion = `#compdef svault

_svault() {
    local -a commands common
    commands=(
        'save:Encrypt a JSON or YAML document into the vault'
        'load:Decrypt the vault and print the document'
        'show:Alias for load'
        'status:Show vault file details without a password'
        'ls:List vaults saved on this machine'
        'diff:Compare the vault document with a local file'
        'forget:Remove vaults from the index'
        'compact:Compact the index database'
        'keyring:Manage password in OS keyring'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )
    common=(
        '(-f --file)'{-f,--file}'[Vault file]:vault file:_files'
        '(-v --verbose)'{-v,--verbose}'[Verbose logging]'
        '--format[Document format]:format:(json yaml)'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'svault commands' commands
            ;;
        args)
            case "${words[2]}" in
                save)
                    _arguments $common \
                        '(-i --input)'{-i,--input}'[Read document from file]:input file:_files' \
                        '--memory[Argon2 memory in KiB]:KiB:' \
                        '--time[Argon2 iterations]:iterations:' \
                        '--parallelism[Argon2 lanes]:lanes:' \
                        '--force[Replace without verifying the old password]'
                    ;;
                diff)
                    _arguments $common '1:local file:_files'
                    ;;
                forget)
                    _arguments $common \
                        '--delete[Also delete the vault files]' \
                        '--force[Do not ask for confirmation]' \
                        '*:vault:_files'
                    ;;
                load|show)
                    _arguments $common '--key[Print only the value at a dotted path]:path:'
                    ;;
                status|ls|compact)
                    _arguments $common
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                help)
                    _describe -t commands 'svault commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_svault "$@"
`

const fishCompletion = `# svault fish completions

set -l commands save load show status ls diff forget compact keyring help completion

complete -c svault -f

# Commands
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a save -d 'Encrypt a document into the vault'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a load -d 'Decrypt and print the document'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a show -d 'Decrypt and print the document'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault file details'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List known vaults'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a diff -d 'Compare vault with local file'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a forget -d 'Remove vaults from the index'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact the index'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage password in OS keyring'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c svault -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# Common flags
complete -c svault -n "__fish_seen_subcommand_from $commands" -s f -l file -r -F -d 'Vault file'
complete -c svault -n "__fish_seen_subcommand_from $commands" -s v -l verbose -d 'Verbose logging'
complete -c svault -n "__fish_seen_subcommand_from $commands" -l format -x -a "json yaml" -d 'Document format'

# save flags
complete -c svault -n "__fish_seen_subcommand_from save" -s i -l input -r -F -d 'Read document from file'
complete -c svault -n "__fish_seen_subcommand_from save" -l memory -x -d 'Argon2 memory in KiB'
complete -c svault -n "__fish_seen_subcommand_from save" -l time -x -d 'Argon2 iterations'
complete -c svault -n "__fish_seen_subcommand_from save" -l parallelism -x -d 'Argon2 lanes'
complete -c svault -n "__fish_seen_subcommand_from save" -l force -d 'Replace without verifying'

# load flags
complete -c svault -n "__fish_seen_subcommand_from load show" -l key -x -d 'Print only the value at a dotted path'

# diff takes a local file
complete -c svault -n "__fish_seen_subcommand_from diff" -F

# forget flags
complete -c svault -n "__fish_seen_subcommand_from forget" -l delete -d 'Also delete vault files'
complete -c svault -n "__fish_seen_subcommand_from forget" -l force -d 'Do not ask for confirmation'
complete -c svault -n "__fish_seen_subcommand_from forget" -F

# keyring subcommands
complete -c svault -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c svault -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c svault -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
