package token_management

import (
	"fmt"

	"github.com/meysamhadeli/codesnap/constants/lipgloss"
	"github.com/meysamhadeli/codesnap/token_management/contracts"
)

// charsPerToken is the usual rule of thumb for source code with BPE tokenizers.
const charsPerToken = 4

type tokenManager struct {
	usedToken int
}

// NewTokenManager creates a new token manager
func NewTokenManager() contracts.ITokenManagement {
	return &tokenManager{}
}

// EstimateTokens approximates the token count of a text from its character count.
func EstimateTokens(characters int) int {
	if characters <= 0 {
		return 0
	}
	return (characters + charsPerToken - 1) / charsPerToken
}

// UsedTokens accumulates the token count for the run.
func (tm *tokenManager) UsedTokens(tokens int) {
	tm.usedToken += tokens
}

func (tm *tokenManager) GetCurrentTokenUsage() int {
	return tm.usedToken
}

func (tm *tokenManager) DisplayTokens(profileName string, files int, bytes int64) {
	tokenInfo := fmt.Sprintf("Snapshot: %s - Files: %d - Size: %s - Estimated Tokens: ~%d",
		profileName, files, formatBytes(bytes), tm.usedToken)

	fmt.Println(lipgloss.BoxStyle.Render(tokenInfo))
}

func formatBytes(bytes int64) string {
	switch {
	case bytes >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(bytes)/(1024*1024))
	case bytes >= 1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
