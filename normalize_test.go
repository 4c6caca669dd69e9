package edgar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeText_HTMLEntities(t *testing.T) {
	out := NormalizeText([]byte("Research &amp; Development &mdash; Q1"))
	require.Equal(t, "Research & Development — Q1", string(out))
}

func TestNormalizeText_NonBreakingSpaceAndCRLF(t *testing.T) {
	out := NormalizeText([]byte("TEST CO\r\nline two\r"))
	require.Equal(t, "TEST CO\nline two\n", string(out))
}

func TestNormalizeText_RemovesZeroWidthChars(t *testing.T) {
	out := NormalizeText([]byte("ABC​﻿DEF"))
	require.Equal(t, "ABCDEF", string(out))
}

// TestPreprocessOldHeader_NormalizesEntities exercises the wiring between
// the pre-2000 header preprocessing pass (§4.1) and NormalizeText: stray
// HTML entities in legacy header values must come out clean.
func TestPreprocessOldHeader_NormalizesEntities(t *testing.T) {
	input := "<COMPANY-CONFORMED-NAME>\nSMITH &amp; SONS\n</COMPANY-CONFORMED-NAME>\n"
	out := preprocessOldHeader(input)
	require.Contains(t, out, "SMITH & SONS")
	require.NotContains(t, out, "&amp;")
}
