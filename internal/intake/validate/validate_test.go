package validate

import (
	"testing"
	"time"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func TestDetail(t *testing.T) {
	tests := []struct {
		name  string
		field model.DetailField
		in    string
		want  string
		ok    bool
	}{
		{"name ok", model.FieldFullName, "  Asha Rao ", "Asha Rao", true},
		{"name short", model.FieldFullName, "A", "", false},
		{"phone plus", model.FieldPhone, "+919812345678", "+919812345678", true},
		{"phone bare", model.FieldPhone, "9812345678", "9812345678", true},
		{"phone short", model.FieldPhone, "98123", "", false},
		{"phone letters", model.FieldPhone, "98123abc90", "", false},
		{"phone too long", model.FieldPhone, "+123456789012345", "", false},
		{"email ok", model.FieldEmail, "Asha.Rao+x@Example.co.in", "Asha.Rao+x@Example.co.in", true},
		{"email no tld", model.FieldEmail, "a@b", "", false},
		{"pan upper", model.FieldPAN, "abcde1234f", "ABCDE1234F", true},
		{"pan bad", model.FieldPAN, "ABCD1234F", "", false},
		{"address ok", model.FieldAddress, "12 MG Road", "12 MG Road", true},
		{"address short", model.FieldAddress, "abc", "", false},
		{"dob iso", model.FieldDOB, "1990-02-28", "1990-02-28", true},
		{"dob dmy", model.FieldDOB, "28/02/1990", "1990-02-28", true},
		{"dob impossible", model.FieldDOB, "1990-02-30", "", false},
		{"dob wrong format", model.FieldDOB, "02-28-1990", "", false},
		{"dob minor", model.FieldDOB, "2010-01-01", "", false},
		{"dob turns 18 today", model.FieldDOB, "2007-06-15", "2007-06-15", true},
		{"dob turns 18 tomorrow", model.FieldDOB, "16/06/2007", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detail(tt.field, tt.in, today)
			if !tt.ok {
				require.Error(t, err)
				assert.Equal(t, errx.KindInput, errx.KindOf(err))
				assert.NotEmpty(t, errx.MessageOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetail_MinorMessageDiffers(t *testing.T) {
	_, bad := Detail(model.FieldDOB, "nope", today)
	_, minor := Detail(model.FieldDOB, "2015-01-01", today)
	assert.NotEqual(t, errx.MessageOf(bad), errx.MessageOf(minor))
}

func TestAccountNumbers(t *testing.T) {
	_, err := Folio("AB12/3")
	assert.NoError(t, err)
	_, err = Folio("-AB123")
	assert.Error(t, err)
	_, err = Folio("AB12")
	assert.Error(t, err)

	_, err = DematAccount("IN30012345")
	assert.NoError(t, err)
	_, err = DematAccount("IN3001")
	assert.Error(t, err, "demat needs at least 7 chars")

	_, err = ClientOrDP("12081600")
	assert.NoError(t, err)
	_, err = ClientOrDP("12 08")
	assert.Error(t, err)
}

func TestAttachments(t *testing.T) {
	assert.True(t, AllowedAttachment("statement.PDF"))
	assert.True(t, AllowedAttachment("scan.jpeg"))
	assert.False(t, AllowedAttachment("run.exe"))
	assert.False(t, AllowedAttachment("noext"))

	assert.Equal(t, "my_file_1_.pdf", SafeFilename("my file(1).pdf"))
	assert.Equal(t, "passwd", SafeFilename("../../etc/passwd"))
	assert.Equal(t, "evil.pdf", SafeFilename(`C:\tmp\evil.pdf`))
}
