package contracts

import (
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestCompileAll(t *testing.T) {
	c, err := CompileAll(".")
	require.NoError(t, err)
	require.Len(t, c, len(vaultContracts))

	require.Equal(t, "VaultShareToken", c[0].Manifest.Name)
	require.Equal(t, "ShareVault", c[1].Manifest.Name)

	for i := range c {
		h := state.CreateContractHash(util.Uint160{}, c[i].NEF.Checksum, c[i].Manifest.Name)
		require.NoError(t, c[i].Manifest.IsValid(h))
		require.NotZero(t, c[i].NEF.Checksum)
	}

	vault := c[1].Manifest.ABI
	require.NotNil(t, vault.GetMethod("deposit", 2))
	require.NotNil(t, vault.GetMethod("withdrawWithMinOut", 3))
	require.True(t, vault.GetMethod("exchangeRate", 0).Safe)
	require.False(t, vault.GetMethod("addYield", 1).Safe)
	require.NotNil(t, vault.GetEvent("Deposit"))
}

func TestCompileMissingConfig(t *testing.T) {
	_, err := Compile(t.TempDir())
	require.Error(t, err)
}

func TestGetMissingFiles(t *testing.T) {
	_fs := fstest.MapFS{}

	// Missing NEF
	_, err := read(_fs, vaultContracts)
	require.Error(t, err)

	// Missing manifest.
	_fs[vaultDir+"/"+nefName] = &fstest.MapFile{}
	_, err = read(_fs, []string{vaultDir})
	require.Error(t, err)
}

func TestReadInvalidFormat(t *testing.T) {
	var (
		_fs          = fstest.MapFS{}
		nefPath      = vaultDir + "/" + nefName
		manifestPath = vaultDir + "/" + manifestName
	)

	_, validNEF := anyValidNEF(t)
	_, validManifest := anyValidManifest(t, "zero")

	_fs[nefPath] = &fstest.MapFile{Data: validNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: validManifest}

	_, err := read(_fs, []string{vaultDir})
	require.NoError(t, err)

	_fs[nefPath] = &fstest.MapFile{Data: []byte("not a NEF")}
	_fs[manifestPath] = &fstest.MapFile{Data: validManifest}

	_, err = read(_fs, []string{vaultDir})
	require.ErrorIs(t, err, errInvalidNEF)

	_fs[nefPath] = &fstest.MapFile{Data: validNEF}
	_fs[manifestPath] = &fstest.MapFile{Data: []byte("not a manifest")}

	_, err = read(_fs, []string{vaultDir})
	require.ErrorIs(t, err, errInvalidManifest)
}

func TestRead(t *testing.T) {
	_fs := fstest.MapFS{}

	for _, dir := range vaultContracts {
		_, bNEF := anyValidNEF(t)
		_, bManifest := anyValidManifest(t, dir)

		_fs[dir+"/"+nefName] = &fstest.MapFile{Data: bNEF}
		_fs[dir+"/"+manifestName] = &fstest.MapFile{Data: bManifest}
	}

	c, err := Read(_fs)
	require.NoError(t, err)
	require.Len(t, c, 2)
	require.Equal(t, shareTokenDir, c[0].Manifest.Name)
	require.Equal(t, vaultDir, c[1].Manifest.Name)
}

func anyValidNEF(tb testing.TB) (nef.File, []byte) {
	script := make([]byte, 32)

	_nef, err := nef.NewFile(script)
	require.NoError(tb, err)

	bNEF, err := _nef.Bytes()
	require.NoError(tb, err)

	return *_nef, bNEF
}

func anyValidManifest(tb testing.TB, name string) (manifest.Manifest, []byte) {
	_manifest := manifest.NewManifest(name)

	jManifest, err := json.Marshal(_manifest)
	require.NoError(tb, err)

	return *_manifest, jManifest
}
