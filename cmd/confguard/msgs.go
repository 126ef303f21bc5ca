package confguard

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort         = "A security guard for your config files"
	MsgInfoShort         = "Show program information and configuration details"
	MsgShowShort         = "Show the guard state of a project"
	MsgGuardShort        = "Guard a project directory"
	MsgUnguardShort      = "Remove guarding from a project"
	MsgGuardOneShort     = "Guard a single file within a guarded project"
	MsgRelinkShort       = "Recreate the project link to a stored config file"
	MsgReplaceLinkShort  = "Replace a symbolic link with its target"
	MsgFixRunConfigShort = "Rewrite the IDE run configuration of a guarded project"
	MsgInitShort         = "Create a config file from a template"
	MsgSopsShort         = "Manage sops encryption of the store"
	MsgSopsEncShort      = "Encrypt files with sops"
	MsgSopsDecShort      = "Decrypt sops encrypted files"
	MsgSopsCleanShort    = "Delete plaintext files that encryption would pick up"
	MsgSopsInitShort     = "Create the store's confguard.toml"
	MsgCompletionShort   = "Generate shell completion script"
	MsgVersionShort      = "Print version information"

	// Status messages
	MsgCreatedFormat      = "Created: %s"
	MsgVersionFormat      = "confguard version %s\n  commit: %s\n  built:  %s\n"
	MsgEncrypting         = "Encrypting"
	MsgDecrypting         = "Decrypting"
	MsgDescriptorFound    = "(%d bytes)"
	MsgDescriptorNotFound = "(not found)"

	// Error messages
	MsgErrNoCommand = "no command specified"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagBaseDir  = "Override the base directory of the managed store"
	MsgFlagFormat   = "Output format: auto, text, term, json or yaml"
	MsgFlagAbsolute = "Use absolute links instead of relative ones"
	MsgFlagTemplate = "Copy this file instead of the built-in template"
	MsgFlagDir      = "Directory to scan instead of the base directory"
)

// Long messages, kept as text files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/guard-long.txt
	msgGuardLongRaw string
	MsgGuardLong    = strings.TrimSpace(msgGuardLongRaw)

	//go:embed msgs/unguard-long.txt
	msgUnguardLongRaw string
	MsgUnguardLong    = strings.TrimSpace(msgUnguardLongRaw)

	//go:embed msgs/relink-long.txt
	msgRelinkLongRaw string
	MsgRelinkLong    = strings.TrimSpace(msgRelinkLongRaw)

	//go:embed msgs/sops-long.txt
	msgSopsLongRaw string
	MsgSopsLong    = strings.TrimSpace(msgSopsLongRaw)

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/info.md
	msgInfoTemplate string
)
