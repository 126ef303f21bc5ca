package sops

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/confguard/pkg/errors"
	"github.com/arthur-debert/confguard/pkg/logging"
)

// Binary is the external encryption tool
const Binary = "sops"

// Runner executes an external command and returns its combined output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements Runner
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Crypto encrypts and decrypts single files with sops and a PGP key
type Crypto struct {
	GPGKey string
	Runner Runner
}

// EncryptArgs returns the sops arguments encrypting input into output
func (c *Crypto) EncryptArgs(input, output string) []string {
	return []string{"-e", "--pgp", c.GPGKey, "--output", output, input}
}

// DecryptArgs returns the sops arguments decrypting input into output.
// Outputs ending in .env are treated as dotenv on both sides.
func (c *Crypto) DecryptArgs(input, output string) []string {
	args := []string{"-d", "--pgp", c.GPGKey}
	if filepath.Ext(output) == ".env" {
		args = append(args, "--input-type", "dotenv", "--output-type", "dotenv")
	}
	return append(args, "--output", output, input)
}

// Encrypt writes the encrypted form of input to output
func (c *Crypto) Encrypt(ctx context.Context, input, output string) error {
	return c.run(ctx, "encrypt", input, c.EncryptArgs(input, output))
}

// Decrypt writes the plaintext form of input to output
func (c *Crypto) Decrypt(ctx context.Context, input, output string) error {
	return c.run(ctx, "decrypt", input, c.DecryptArgs(input, output))
}

func (c *Crypto) run(ctx context.Context, op, input string, args []string) error {
	logger := logging.GetLogger("sops.crypto")
	logger.Debug().Str("op", op).Strs("args", args).Msg("Running sops")

	out, err := c.Runner.Run(ctx, Binary, args...)
	if err != nil {
		return errors.Wrapf(err, errors.ErrCrypto, "sops %s failed for %s: %s", op, input, strings.TrimSpace(string(out)))
	}
	return nil
}
