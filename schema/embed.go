package schema

import _ "embed"

// TargetV1Schema contains the JSON schema for botctl target manifests.
//
//go:embed target.v1.json
var TargetV1Schema []byte
