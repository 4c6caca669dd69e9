package edgar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateIdentity(t *testing.T) {
	require.NoError(t, ValidateIdentity("Jane Analyst jane@realcompany.com"))
	require.Error(t, ValidateIdentity(""))
	require.Error(t, ValidateIdentity("Jane Analyst not-an-email"))
	require.Error(t, ValidateIdentity("Jane Analyst jane@example.com"), "placeholder example.com addresses must be rejected")
}

func TestFormatIdentity(t *testing.T) {
	require.Equal(t, "Jane Analyst jane@realcompany.com", FormatIdentity("Jane Analyst", "jane@realcompany.com"))
}

func TestIdentityFromEnv(t *testing.T) {
	t.Setenv("EDGAR_IDENTITY", "")
	_, err := IdentityFromEnv()
	require.Error(t, err)

	t.Setenv("EDGAR_IDENTITY", "Jane Analyst jane@realcompany.com")
	identity, err := IdentityFromEnv()
	require.NoError(t, err)
	require.Equal(t, "Jane Analyst jane@realcompany.com", identity)
}
