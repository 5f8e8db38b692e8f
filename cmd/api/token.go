package main

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

var (
	tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a company, for operators and local testing",
		RunE:  runToken,
	}
	tokenCompanyID string
	tokenUserID    string
)

func init() {
	tokenCmd.Flags().StringVar(&tokenCompanyID, "company", "", "company id carried by the token")
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "operator", "user id carried by the token")
	_ = tokenCmd.MarkFlagRequired("company")
}

func runToken(cmd *cobra.Command, _ []string) error {
	svc := jwt.NewJWTService(loadedConfig.JWT.Secret, loadedConfig.JWT.AccessExpiration.String())

	token, expiresAt, err := svc.GenerateAccessToken(tokenUserID, tokenCompanyID)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
	return nil
}
