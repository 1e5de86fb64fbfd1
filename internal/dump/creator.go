package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Creator errors.
var (
	ErrUnknownContract   = errors.New("contract is neither the vault nor its share token")
	ErrDuplicateContract = errors.New("contract is already added")
	ErrIncompleteDump    = errors.New("dump lacks the vault or its share token")
	ErrFlushed           = errors.New("dump is already flushed")
)

// pairOrder is the order contract states are written in.
var pairOrder = [...]string{ShareTokenName, VaultName}

// Creator dumps the Vault and its share token. Output file format:
//
//	'<label>-<block>-contracts.json': JSON array of both contract states,
//	  share token first
//	'<label>-<block>-storage.csv': 'name,key,value' rows, keys and values
//	  are base64-encoded
//
// Use Open or IterateDumps to access existing dumps.
type Creator struct {
	dumpStreams

	states  map[string]state.Contract
	csv     *csv.Writer
	flushed bool
}

// NewCreator returns Creator which writes the dump with the given ID into
// dir. It fails if such dump already exists. Creator should be closed when
// finished working with it.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res = Creator{
		states: make(map[string]state.Contract, len(pairOrder)),
	}

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.csv = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// AddContract registers the state of ShareTokenName or VaultName contract
// and returns StorageWriter for its storage. Each of them can be added once.
func (x *Creator) AddContract(name string, st state.Contract) (*StorageWriter, error) {
	if x.flushed {
		return nil, ErrFlushed
	}
	if name != ShareTokenName && name != VaultName {
		return nil, fmt.Errorf("%w: %q", ErrUnknownContract, name)
	}
	if _, ok := x.states[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateContract, name)
	}

	x.states[name] = st

	return &StorageWriter{name: name, creator: x}, nil
}

// Flush writes contract states and buffered storage items. Both contracts
// must have been added.
func (x *Creator) Flush() error {
	if x.flushed {
		return ErrFlushed
	}

	states := make([]dumpContractState, 0, len(pairOrder))
	for _, name := range pairOrder {
		st, ok := x.states[name]
		if !ok {
			return fmt.Errorf("%w: missing %q", ErrIncompleteDump, name)
		}
		states = append(states, dumpContractState{Name: name, State: st})
	}

	jEnc := json.NewEncoder(x.dumpStreams.contracts)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(states)
	if err != nil {
		return fmt.Errorf("encode contract states to JSON: %w", err)
	}

	x.csv.Flush()

	err = x.csv.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	x.flushed = true

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// StorageWriter writes storage items of one contract of the pair.
type StorageWriter struct {
	name    string
	creator *Creator
	items   int
}

// Write saves binary key-value as a storage item of the contract.
func (x *StorageWriter) Write(key, value []byte) error {
	if x.creator.flushed {
		return ErrFlushed
	}

	err := x.creator.csv.Write([]string{
		x.name,
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	x.items++

	return nil
}

// Items returns the number of storage items written so far.
func (x *StorageWriter) Items() int {
	return x.items
}

// StorageIterator passes every storage item of the contract into f and stops
// on the first f error.
type StorageIterator func(contract util.Uint160, f func(key, value []byte) error) error

// Write dumps the share token and the Vault bound to it into dir, reading
// their storage with iterate. The vault must reference the token.
func Write(dir string, id ID, token, vault state.Contract, iterate StorageIterator) error {
	c, err := NewCreator(dir, id)
	if err != nil {
		return fmt.Errorf("init dump creator: %w", err)
	}
	defer c.Close()

	for _, p := range []struct {
		name string
		st   state.Contract
	}{
		{ShareTokenName, token},
		{VaultName, vault},
	} {
		w, err := c.AddContract(p.name, p.st)
		if err != nil {
			return err
		}

		err = iterate(p.st.Hash, w.Write)
		if err != nil {
			return fmt.Errorf("iterate '%s' contract storage: %w", p.name, err)
		}
	}

	return c.Flush()
}
