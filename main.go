package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/awnumar/memguard"

	"github.com/illarion/svault/cmd"
	"github.com/illarion/svault/internal/config"
)

func main() {
	// Wipe sealed passwords and locked keys on interrupt and on exit.
	memguard.CatchInterrupt()
	defer memguard.Purge()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "save":
		runSave(ctx, os.Args[2:])
	case "load", "show":
		runLoad(ctx, os.Args[2:])
	case "status":
		runStatus(ctx, os.Args[2:])
	case "ls":
		runLs(ctx, os.Args[2:])
	case "diff":
		runDiff(ctx, os.Args[2:])
	case "forget":
		runForget(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "keyring":
		runKeyring(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// commonFlags registers -f/--file, -v/--verbose and --format on fs.
func commonFlags(fs *flag.FlagSet) *cmd.Options {
	opts := &cmd.Options{}
	fs.StringVar(&opts.File, "f", "", "Vault file (default "+config.DefaultVaultFile+")")
	fs.StringVar(&opts.File, "file", "", "Vault file")
	fs.BoolVar(&opts.Verbose, "v", false, "Verbose logging")
	fs.BoolVar(&opts.Verbose, "verbose", false, "Verbose logging")
	fs.StringVar(&opts.Format, "format", "", "Document format: json or yaml")
	return opts
}

func parse(fs *flag.FlagSet, args []string) {
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func runSave(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	opts := commonFlags(fs)
	var input string
	fs.StringVar(&input, "i", "", "Read document from file (default stdin)")
	fs.StringVar(&input, "input", "", "Read document from file (default stdin)")
	memory := fs.Uint("memory", 0, "Argon2 memory cost in KiB")
	iterations := fs.Uint("time", 0, "Argon2 iterations")
	parallelism := fs.Uint("parallelism", 0, "Argon2 lanes")
	force := fs.Bool("force", false, "Replace an existing vault without verifying its password")
	parse(fs, args)

	env := cmd.Setup(*opts)

	params := env.Config.KDF
	if *memory != 0 {
		params.MemoryCost = uint32(*memory)
	}
	if *iterations != 0 {
		params.TimeCost = uint32(*iterations)
	}
	if *parallelism != 0 {
		params.Parallelism = uint32(*parallelism)
	}

	cmd.Save(ctx, env, cmd.SaveOptions{Input: input, Params: params, Force: *force})
}

func runLoad(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	opts := commonFlags(fs)
	key := fs.String("key", "", "Print only the value at a dotted path (e.g. github.token)")
	parse(fs, args)

	cmd.Load(ctx, cmd.Setup(*opts), *key)
}

func runStatus(_ context.Context, args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	opts := commonFlags(fs)
	parse(fs, args)

	cmd.Status(cmd.Setup(*opts))
}

func runLs(_ context.Context, args []string) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	opts := commonFlags(fs)
	parse(fs, args)

	cmd.Ls(cmd.Setup(*opts))
}

func runDiff(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	opts := commonFlags(fs)
	parse(fs, args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: svault diff [-f vault] <file|->")
		os.Exit(1)
	}
	cmd.Diff(ctx, cmd.Setup(*opts), fs.Arg(0))
}

func runForget(_ context.Context, args []string) {
	fs := flag.NewFlagSet("forget", flag.ExitOnError)
	opts := commonFlags(fs)
	deleteFiles := fs.Bool("delete", false, "Also delete the vault files")
	force := fs.Bool("force", false, "Do not ask for confirmation")
	parse(fs, args)

	cmd.Forget(cmd.Setup(*opts), fs.Args(), *deleteFiles, *force)
}

func runCompact(_ context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	opts := commonFlags(fs)
	parse(fs, args)

	cmd.Compact(cmd.Setup(*opts))
}

func runKeyring(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: svault keyring <save|delete|status>")
		os.Exit(1)
	}

	fs := flag.NewFlagSet("keyring "+args[0], flag.ExitOnError)
	opts := commonFlags(fs)
	parse(fs, args[1:])
	env := cmd.Setup(*opts)

	switch args[0] {
	case "save":
		cmd.KeyringSave(env)
	case "delete":
		cmd.KeyringDelete(env)
	case "status":
		cmd.KeyringStatus(env)
	default:
		fmt.Fprintf(os.Stderr, "Unknown keyring command: %s\n", args[0])
		os.Exit(1)
	}
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: svault completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("svault - password-encrypted vault file for a single document")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  svault <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  save        Encrypt a JSON or YAML document into the vault")
	fmt.Println("  load, show  Decrypt the vault and print the document")
	fmt.Println("  status      Show vault file details (no password needed)")
	fmt.Println("  ls          List vaults saved on this machine")
	fmt.Println("  diff        Compare the vault document with a local file")
	fmt.Println("  forget      Remove vaults from the index")
	fmt.Println("  compact     Compact the index database")
	fmt.Println("  keyring     Manage the vault password in the OS keyring")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Common flags:")
	fmt.Println("  -f, --file     Vault file (default " + config.DefaultVaultFile + ")")
	fmt.Println("  -v, --verbose  Verbose logging on stderr")
	fmt.Println("  --format       Document format: json (default) or yaml")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  svault save -i creds.json        # Encrypt creds.json")
	fmt.Println("  svault show                      # Print the decrypted document")
	fmt.Println("  svault status                    # Check vault file")
	fmt.Println()
	fmt.Println("Use 'svault help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "save":
		fmt.Println("svault save [-f vault] [-i file] [--memory KiB] [--time N] [--parallelism N] [--force]")
		fmt.Println()
		fmt.Println("Reads a JSON or YAML document from a file or stdin and encrypts it into")
		fmt.Println("the vault. The file is replaced atomically; a crash leaves the previous")
		fmt.Println("vault intact.")
		fmt.Println()
		fmt.Println("Saving over an existing vault requires its current password. A new")
		fmt.Println("vault asks for the password twice. SVAULT_PASSWORD skips the prompt.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -i, --input      Read document from file (default stdin)")
		fmt.Println("  --memory         Argon2id memory in KiB (default 65536)")
		fmt.Println("  --time           Argon2id iterations (default 3)")
		fmt.Println("  --parallelism    Argon2id lanes (default 1)")
		fmt.Println("  --force          Replace without verifying the old password")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  svault save -i creds.json")
		fmt.Println("  echo '{\"token\":\"x\"}' | svault save -f ~/work.svlt")
	case "load", "show":
		fmt.Println("svault load [-f vault] [--format json|yaml] [--key path]")
		fmt.Println()
		fmt.Println("Decrypts the vault and prints the document to stdout.")
		fmt.Println("Nothing is written to disk.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --key    Print only the value at a dotted path; strings are printed bare")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  svault show")
		fmt.Println("  svault load --format yaml")
		fmt.Println("  export TOKEN=$(svault show --key github.token)")
	case "status":
		fmt.Println("svault status [-f vault]")
		fmt.Println()
		fmt.Println("Shows format version, size, KDF parameters, last save time and")
		fmt.Println("whether the password is stored in the OS keyring.")
		fmt.Println()
		fmt.Println("Does not require a password.")
	case "ls":
		fmt.Println("svault ls")
		fmt.Println()
		fmt.Println("Lists the vaults saved with svault on this machine.")
		fmt.Println("Does not require a password.")
	case "diff":
		fmt.Println("svault diff [-f vault] <file|->")
		fmt.Println()
		fmt.Println("Compares the decrypted vault document with a local file.")
		fmt.Println("Both sides are normalized to the selected format first.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  svault diff creds.json")
	case "forget":
		fmt.Println("svault forget [--delete] [--force] [vault...]")
		fmt.Println()
		fmt.Println("Removes vaults from the index and their passwords from the keyring.")
		fmt.Println("Without arguments, forgets the current vault.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --delete    Also delete the vault files")
		fmt.Println("  --force     Do not ask for confirmation")
	case "compact":
		fmt.Println("svault compact")
		fmt.Println()
		fmt.Println("Compacts the index database to reclaim unused disk space.")
		fmt.Println("Does not require a password.")
	case "keyring":
		fmt.Println("svault keyring <save|delete|status> [-f vault]")
		fmt.Println()
		fmt.Println("Manages the vault password in the OS keyring.")
		fmt.Println("  save     Verify the password and store it")
		fmt.Println("  delete   Remove the stored password")
		fmt.Println("  status   Show whether a password is stored")
	case "completion":
		fmt.Println("svault completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(svault completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(svault completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  svault completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
