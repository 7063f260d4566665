package util

import (
	"os"
	"os/user"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFileWithPermissions(t *testing.T, perm os.FileMode, gid int) string {
	if os.Geteuid() != 0 {
		t.Skip("changing file ownership requires root")
	}

	filePath := filepath.Join(t.TempDir(), "testfile")
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })
	require.NoError(t, os.Chown(filePath, 0, gid))
	require.NoError(t, os.Chmod(filePath, perm))
	return filePath
}

func TestFileHasPermissionsUserIsRoot(t *testing.T) {
	// GIVEN
	filePath := createFileWithPermissions(t, 0o700, 1000)

	// WHEN
	result, err := CheckFilePermissionsForExecution(filePath)

	// THEN
	assert.Equal(t, true, result)
	assert.NoError(t, err)
}

func TestFileHasPermissionsGroupIsRootAndHasWrite(t *testing.T) {
	// GIVEN
	filePath := createFileWithPermissions(t, 0o770, 0)

	// WHEN
	result, err := CheckFilePermissionsForExecution(filePath)

	// THEN
	assert.Equal(t, true, result)
	assert.NoError(t, err)
}

func TestFileHasPermissionsGroupOtherThanRootHasWritePermission(t *testing.T) {
	// GIVEN
	filePath := createFileWithPermissions(t, 0o720, 1000)

	// WHEN
	result, err := CheckFilePermissionsForExecution(filePath)

	// THEN
	assert.Equal(t, false, result)
	assert.EqualError(t, err, "group is not root but has write permission")
}

func TestFileHasPermissionsOtherHasWritePermission(t *testing.T) {
	// GIVEN
	filePath := createFileWithPermissions(t, 0o702, 1000)

	// WHEN
	result, err := CheckFilePermissionsForExecution(filePath)

	// THEN
	assert.Equal(t, false, result)
	assert.EqualError(t, err, "others have write permission")
}

func TestCheckFilePermissionsForExecution_Missing(t *testing.T) {
	// WHEN
	result, err := CheckFilePermissionsForExecution(filepath.Join(t.TempDir(), "missing"))

	// THEN
	assert.False(t, result)
	assert.Error(t, err)
}

func TestReadFloatFromFile(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "value")
	require.NoError(t, os.WriteFile(filePath, []byte(" 21.75\n"), 0644))

	// WHEN
	value, err := ReadFloatFromFile(filePath)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 21.75, value)
}

func TestReadFloatFromFile_Empty(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "value")
	require.NoError(t, os.WriteFile(filePath, []byte("\n"), 0644))

	// WHEN
	_, err := ReadFloatFromFile(filePath)

	// THEN
	assert.EqualError(t, err, "file is empty: "+filePath)
}

func TestWriteFloatToFileAtomic(t *testing.T) {
	// GIVEN
	filePath := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.WriteFile(filePath, []byte("1234567"), 0644))

	// WHEN
	err := WriteFloatToFileAtomic(-0.125, filePath)

	// THEN
	require.NoError(t, err)
	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "-0.125", string(data))
}

func TestExpandHomeDir(t *testing.T) {
	// GIVEN
	currentUser, err := user.Current()
	require.NoError(t, err)

	// WHEN
	expanded, err := ExpandHomeDir("~/pidref/value")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(currentUser.HomeDir, "pidref/value"), expanded)

	// WHEN
	unchanged, err := ExpandHomeDir("/tmp/value")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/value", unchanged)
}
