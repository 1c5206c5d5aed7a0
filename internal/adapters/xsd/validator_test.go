package xsd_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/adapters/xsd"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

const dialogSchema = `<?xml version="1.0"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="nodes">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="node" minOccurs="0" maxOccurs="unbounded">
          <xs:complexType>
            <xs:sequence>
              <xs:element name="condition" type="xs:string" minOccurs="0"/>
            </xs:sequence>
            <xs:attribute name="name" type="xs:string"/>
          </xs:complexType>
        </xs:element>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>`

func loadValidator(t *testing.T) ports.SchemaValidator {
	t.Helper()
	fsys := fstest.MapFS{
		"dialog.xsd": &fstest.MapFile{Data: []byte(dialogSchema)},
	}
	v, err := xsd.LoadFS(fsys, "dialog.xsd")
	require.NoError(t, err)
	return v
}

func TestValidator_Valid(t *testing.T) {
	v := loadValidator(t)

	diags, err := v.Validate(context.Background(), []byte(`<nodes><node name="a"><condition>#hi</condition></node></nodes>`))
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestValidator_Violation(t *testing.T) {
	v := loadValidator(t)

	diags, err := v.Validate(context.Background(), []byte(`<nodes><bogus/></nodes>`))
	require.NoError(t, err)
	require.NotEmpty(t, diags)
	assert.Equal(t, domain.StageSchema, diags[0].Stage)
	assert.Equal(t, domain.SeverityWarning, diags[0].Severity)
}

func TestValidator_Cancelled(t *testing.T) {
	v := loadValidator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := v.Validate(ctx, []byte(`<nodes/>`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialog.xsd")
	require.NoError(t, os.WriteFile(path, []byte(dialogSchema), 0644))

	_, err := xsd.Load(path)
	require.NoError(t, err)

	_, err = xsd.Load(filepath.Join(t.TempDir(), "missing.xsd"))
	assert.Error(t, err)
}
