/*
Package contracts provides access to the vault contracts as NEF and manifest
pairs, either read from the build output or compiled from the sources.
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/nspcc-dev/neo-go/cli/smartcontract"
	"github.com/nspcc-dev/neo-go/pkg/compiler"
	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

const (
	shareTokenDir = "sharetoken"
	vaultDir      = "vault"

	nefName      = "contract.nef"
	manifestName = "manifest.json"
	configName   = "config.yml"
)

// Contract groups information about Neo contract stored in the current package.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	errInvalidNEF      = errors.New("invalid NEF")
	errInvalidManifest = errors.New("invalid manifest")

	// deployment order, the share token is deployed first so that the
	// vault finds its ledger on deploy.
	vaultContracts = []string{
		shareTokenDir,
		vaultDir,
	}
)

// Read returns the share token and the vault contracts from the build
// output, one directory per contract holding contract.nef and manifest.json.
// They're returned in the order they're supposed to be deployed.
func Read(fsys fs.FS) ([]Contract, error) {
	return read(fsys, vaultContracts)
}

// CompileAll compiles the share token and the vault from the contracts
// source root (the directory of this package). They're returned in the order
// they're supposed to be deployed.
func CompileAll(root string) ([]Contract, error) {
	var res = make([]Contract, 0, len(vaultContracts))

	for i := range vaultContracts {
		c, err := Compile(filepath.Join(root, vaultContracts[i]))
		if err != nil {
			return nil, fmt.Errorf("compile contract %s: %w", vaultContracts[i], err)
		}

		res = append(res, c)
	}

	return res, nil
}

// Compile compiles the contract package in dir using config.yml from the
// same directory for the manifest.
func Compile(dir string) (Contract, error) {
	var c Contract

	conf, err := smartcontract.ParseContractConfig(filepath.Join(dir, configName))
	if err != nil {
		return c, fmt.Errorf("parse config: %w", err)
	}

	o := &compiler.Options{
		Name:                       conf.Name,
		ContractEvents:             conf.Events,
		ContractSupportedStandards: conf.SupportedStandards,
		SafeMethods:                conf.SafeMethods,
		Overloads:                  conf.Overloads,
		SourceURL:                  conf.SourceURL,
	}
	o.Permissions = make([]manifest.Permission, len(conf.Permissions))
	for i := range conf.Permissions {
		o.Permissions[i] = manifest.Permission(conf.Permissions[i])
	}

	ne, di, err := compiler.CompileWithOptions(dir, nil, o)
	if err != nil {
		return c, fmt.Errorf("compile: %w", err)
	}

	m, err := compiler.CreateManifest(di, o)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	c.NEF = *ne
	c.Manifest = *m

	return c, nil
}

// read same as Read by allows to override source directories.
func read(_fs fs.FS, dirs []string) ([]Contract, error) {
	var res = make([]Contract, 0, len(dirs))

	for i := range dirs {
		c, err := readContractFromDir(_fs, dirs[i])
		if err != nil {
			return nil, fmt.Errorf("read contract %s: %w", dirs[i], err)
		}

		res = append(res, c)
	}

	return res, nil
}

func readContractFromDir(_fs fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS uses "/" even on Windows, so filepath.Join() is not applicable.
	fNEF, err := _fs.Open(dir + "/" + nefName)
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := _fs.Open(dir + "/" + manifestName)
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", errInvalidManifest, err)
	}

	return c, nil
}
