// Package auth resolves and validates the Gemini API key.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

const (
	credentialDir  = ".birthday-surprise"
	credentialFile = "credentials.gpg"
)

// ParameterGetter is the SSM call used to fetch the key. *ssm.Client
// satisfies it.
type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Sources configures where GetAPIKey looks beyond the environment.
type Sources struct {
	// SSM and SSMParam enable the Parameter Store lookup when both are set.
	SSM      ParameterGetter
	SSMParam string
	// SkipGPG disables the encrypted credentials file, e.g. under Lambda.
	SkipGPG bool
}

// GetAPIKey retrieves the Gemini API key from available sources.
// Priority order:
//  1. GEMINI_API_KEY environment variable (a .env file is loaded into the
//     environment by the config package before this runs)
//  2. SSM Parameter Store, when configured
//  3. GPG-encrypted file at ~/.birthday-surprise/credentials.gpg
func GetAPIKey(ctx context.Context, src Sources) (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		log.Debug().Msg("Using API key from environment variable")
		return key, nil
	}

	var errs []error

	if src.SSM != nil && src.SSMParam != "" {
		key, err := getFromSSM(ctx, src.SSM, src.SSMParam)
		if err == nil && key != "" {
			log.Debug().Str("param", src.SSMParam).Msg("Using API key from SSM")
			return key, nil
		}
		errs = append(errs, err)
	}

	if !src.SkipGPG {
		key, err := getFromGPG()
		if err == nil && key != "" {
			log.Debug().Msg("Using API key from GPG encrypted file")
			return key, nil
		}
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	log.Warn().Err(err).Msg("Failed to retrieve API key")
	return "", &ValidationError{
		Type:    ErrTypeNoKey,
		Message: "API key not found. Set GEMINI_API_KEY or SSM_API_KEY_PARAM, or store a GPG-encrypted key at ~/" + filepath.Join(credentialDir, credentialFile),
		Err:     err,
	}
}

// NewSSMClient loads the default AWS config and returns a Parameter Store
// client.
func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return ssm.NewFromConfig(cfg), nil
}

func getFromSSM(ctx context.Context, client ParameterGetter, paramName string) (string, error) {
	ssmStart := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read API key from SSM parameter %s: %w", paramName, err)
	}
	if result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("SSM parameter %s has no value", paramName)
	}
	log.Debug().Str("param", paramName).Dur("elapsed", time.Since(ssmStart)).Msg("Gemini API key loaded from SSM")
	return strings.TrimSpace(*result.Parameter.Value), nil
}

// getFromGPG decrypts the API key from the GPG-encrypted credentials file.
func getFromGPG() (string, error) {
	credPath, err := getCredentialPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(credPath); os.IsNotExist(err) {
		return "", fmt.Errorf("GPG credentials file not found at %s", credPath)
	}

	log.Debug().Str("file", credPath).Msg("Decrypting GPG credentials")

	// Build GPG command with optional passphrase file for non-interactive use
	args := []string{"--decrypt", "--quiet"}

	passphrasePath, err := getPassphrasePath()
	if err == nil {
		fi, statErr := os.Stat(passphrasePath)
		if statErr == nil {
			// Passphrase file must be owner-only.
			mode := fi.Mode().Perm()
			if mode&0077 != 0 {
				log.Warn().
					Str("passphrase_file", passphrasePath).
					Str("permissions", fmt.Sprintf("%04o", mode)).
					Msg("Passphrase file has insecure permissions (should be 0600); skipping")
			} else {
				log.Debug().Str("passphrase_file", passphrasePath).Msg("Using passphrase file for GPG decryption")
				args = append(args, "--pinentry-mode", "loopback", "--passphrase-file", passphrasePath)
			}
		}
	}

	args = append(args, credPath)
	cmd := exec.Command("gpg", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("GPG decryption failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("GPG decryption failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// getCredentialPath returns the full path to the credentials file.
func getCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, credentialDir, credentialFile), nil
}

// getPassphrasePath returns the path to the GPG passphrase file, looking
// next to the executable first and then in the working directory.
func getPassphrasePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	passphrasePath := filepath.Join(filepath.Dir(exe), ".gpg-passphrase")
	if _, err := os.Stat(passphrasePath); err == nil {
		return passphrasePath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	return filepath.Join(cwd, ".gpg-passphrase"), nil
}
