package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"site-cms/pkg/services"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the ADMIN_PASSWORD_HASH_B64 value for a password",
	Long: `Hash a password with bcrypt and print it base64 encoded, ready to be used
as ADMIN_PASSWORD_HASH_B64. Without an argument the password is read from the
first line of stdin, which keeps it out of shell history.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)

	hashPasswordCmd.Flags().Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	cost, _ := cmd.Flags().GetInt("cost")
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		scanner := bufio.NewScanner(cmd.InOrStdin())
		if scanner.Scan() {
			password = strings.TrimRight(scanner.Text(), "\r")
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read password: %w", err)
		}
	}
	if password == "" {
		return errors.New("no password given")
	}

	encoded, err := services.HashPassword(password, cost)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), encoded)
	return nil
}
