package member

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeString(t *testing.T) {
	t.Run("trims whitespace", func(t *testing.T) {
		assert.Equal(t, "abc", NormalizeString("  abc  "))
	})

	t.Run("nil yields empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeString(nil))
	})

	t.Run("integral float has no fraction", func(t *testing.T) {
		assert.Equal(t, "12345", NormalizeString(float64(12345)))
	})

	t.Run("non-scalar yields empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeString(map[string]any{"a": 1}))
	})
}

func TestParseMoney(t *testing.T) {
	t.Run("strips thousands separators", func(t *testing.T) {
		d := ParseMoney("1,234.00")
		require.NotNil(t, d)
		assert.True(t, d.Equal(decimal.NewFromInt(1234)))
	})

	t.Run("empty string is nil not zero", func(t *testing.T) {
		assert.Nil(t, ParseMoney(""))
	})

	t.Run("missing value is nil", func(t *testing.T) {
		assert.Nil(t, ParseMoney(nil))
	})

	t.Run("non-numeric is nil", func(t *testing.T) {
		assert.Nil(t, ParseMoney("abc"))
	})

	t.Run("explicit zero is zero", func(t *testing.T) {
		d := ParseMoney("0")
		require.NotNil(t, d)
		assert.True(t, d.IsZero())
	})

	t.Run("json float passes through", func(t *testing.T) {
		d := ParseMoney(float64(1500.5))
		require.NotNil(t, d)
		assert.True(t, d.Equal(decimal.NewFromFloat(1500.5)))
	})
}

func TestParseDateFlexible(t *testing.T) {
	t.Run("day-first slash date", func(t *testing.T) {
		d := ParseDateFlexible("01/03/2024", true)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *d)
		// leap year boundary
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d.AddDate(0, 0, -1))
	})

	t.Run("month-first when flag says so", func(t *testing.T) {
		d := ParseDateFlexible("01/03/2024", false)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("first token over twelve is the day regardless of flag", func(t *testing.T) {
		d := ParseDateFlexible("25/03/2024", false)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("second token over twelve is the day regardless of flag", func(t *testing.T) {
		d := ParseDateFlexible("03/25/2024", true)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("iso date", func(t *testing.T) {
		d := ParseDateFlexible("2024-03-01", true)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("iso date with time suffix", func(t *testing.T) {
		d := ParseDateFlexible("2024-03-01T00:00:00", true)
		require.NotNil(t, d)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *d)
	})

	t.Run("two-digit year maps to 2000s", func(t *testing.T) {
		d := ParseDateFlexible("15/06/23", true)
		require.NotNil(t, d)
		assert.Equal(t, 2023, d.Year())
	})

	t.Run("out-of-range day is rejected not clamped", func(t *testing.T) {
		assert.Nil(t, ParseDateFlexible("32/01/2024", true))
	})

	t.Run("both tokens over twelve is rejected", func(t *testing.T) {
		assert.Nil(t, ParseDateFlexible("13/13/2024", true))
	})

	t.Run("nonexistent calendar day is rejected", func(t *testing.T) {
		assert.Nil(t, ParseDateFlexible("30/02/2023", true))
	})

	t.Run("garbage is nil", func(t *testing.T) {
		assert.Nil(t, ParseDateFlexible("not a date", true))
		assert.Nil(t, ParseDateFlexible("", true))
		assert.Nil(t, ParseDateFlexible(nil, true))
	})
}

func TestFixMojibake(t *testing.T) {
	t.Run("repairs latin1-decoded utf8", func(t *testing.T) {
		assert.Equal(t, "Nguyễn", FixMojibake("Nguyá»…n"))
		// the trailing byte of "à" (0xC3 0xA0) decodes to a non-breaking space
		assert.Equal(t, "Trần Thị Hà", FixMojibake("Tráº§n Thá»‹ HÃ "))
	})

	t.Run("clean string passes through", func(t *testing.T) {
		assert.Equal(t, "Nguyễn Văn An", FixMojibake("Nguyễn Văn An"))
		assert.Equal(t, "plain ascii", FixMojibake("plain ascii"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		inputs := []string{
			"Nguyá»…n",
			"Nguyễn Văn An",
			"Tráº§n Thá»‹ HÃ ",
			"plain ascii",
			"",
		}
		for _, in := range inputs {
			once := FixMojibake(in)
			assert.Equal(t, once, FixMojibake(once), "fix(fix(%q)) differs from fix(%q)", in, in)
		}
	})
}

func TestFormatVietnameseName(t *testing.T) {
	t.Run("title-cases tokens", func(t *testing.T) {
		assert.Equal(t, "Nguyễn Văn An", FormatVietnameseName("nguyễn văn an"))
	})

	t.Run("collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "Trần Thị Hà", FormatVietnameseName("  trần   thị\thà "))
	})

	t.Run("handles hyphenated tokens", func(t *testing.T) {
		assert.Equal(t, "Anna-Maria Lê", FormatVietnameseName("anna-maria lê"))
	})

	t.Run("lowercases shouty input", func(t *testing.T) {
		assert.Equal(t, "Phạm Quỳnh", FormatVietnameseName("PHẠM QUỲNH"))
	})

	t.Run("empty stays empty", func(t *testing.T) {
		assert.Equal(t, "", FormatVietnameseName("   "))
	})
}

func TestMapGender(t *testing.T) {
	assert.Equal(t, GenderMale, MapGender("Male"))
	assert.Equal(t, GenderMale, MapGender("MALE"))
	assert.Equal(t, GenderFemale, MapGender("female"))
	assert.Equal(t, GenderFemale, MapGender("Nữ"))
	assert.Equal(t, GenderUnknown, MapGender("other"))
	assert.Equal(t, GenderUnknown, MapGender(""))
	assert.Equal(t, GenderUnknown, MapGender(nil))
}

func TestNormalizeMemberNo(t *testing.T) {
	t.Run("keeps digits", func(t *testing.T) {
		no, err := NormalizeMemberNo(" 00123 ")
		require.NoError(t, err)
		assert.Equal(t, "00123", no)
	})

	t.Run("strips non-digits", func(t *testing.T) {
		no, err := NormalizeMemberNo("MB-00123")
		require.NoError(t, err)
		assert.Equal(t, "00123", no)
	})

	t.Run("numeric payload value", func(t *testing.T) {
		no, err := NormalizeMemberNo(float64(123))
		require.NoError(t, err)
		assert.Equal(t, "123", no)
	})

	t.Run("no digits fails", func(t *testing.T) {
		_, err := NormalizeMemberNo("abc")
		assert.Error(t, err)
	})
}
