package siteid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Code
	}{
		{"empty cell", "", Missing},
		{"nan text", "NaN", Missing},
		{"bare ip with semicolon", "10.0.0.1;", Missing},
		{"digits only", "123456", Missing},
		{"site then ip", "AB12; 10.0.0.1", Of("AB12")},
		{"ip then site", "10.0.0.1; CD34", Of("CD34")},
		{"long site id", "SITE123X", Of("SITE")},
		{"short site id", "ab", Of("ab")},
		{"ip suffix", "HFA7.10.1.1.1", Of("HFA7")},
		{"multibyte", "חיפה123", Of("חיפה")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_CaseLeftToCaller(t *testing.T) {
	t.Parallel()

	c := Normalize("SITE123X")
	require.Equal(t, "SITE", c.Value)
	require.Equal(t, "site", c.Lower().Value)
	require.Equal(t, c.Lower(), Normalize(c.Lower().Value).Lower())
}

func TestLinkID(t *testing.T) {
	t.Parallel()

	require.Equal(t, Of("abcd-efgh"), LinkID(Of("ABCD"), Of("efGH")))
	require.Equal(t, Missing, LinkID(Of("abcd"), Missing))
	require.Equal(t, Missing, LinkID(Missing, Of("abcd")))
}

func TestSplitLink(t *testing.T) {
	t.Parallel()

	a, b := SplitLink("HAIF-TLV1")
	require.Equal(t, "haif", a)
	require.Equal(t, "tlv1", b)

	a, b = SplitLink("solo")
	require.Equal(t, "solo", a)
	require.Equal(t, "", b)
}

func TestCodeText(t *testing.T) {
	t.Parallel()

	b, _ := Missing.MarshalText()
	require.Empty(t, b)
	b, _ = Of("abcd").MarshalText()
	require.Equal(t, "abcd", string(b))
}

func TestNormalize_ThreeAlternatives(t *testing.T) {
	t.Parallel()

	require.Equal(t, Of("EF56"), Normalize("10.1.1.1; EF56; 10.2.2.2"))
}
