package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// Update replaces the executing contract's code and manifest. Caller must
// have checked the access rights. Current version is appended to data so
// the new code can migrate storage in its _deploy.
func Update(nefFile, manifest []byte, data any) {
	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, AppendVersion(data))
	runtime.Log("contract updated")
}

// UpdatedFrom extracts the version appended by Update from _deploy data.
func UpdatedFrom(data any) int {
	args := data.([]any)
	return args[len(args)-1].(int)
}
