package appidentityassets

import _ "embed"

// YAML is the embedded copy of the app identity manifest, giving the binary a
// stable name and env prefix even when no external `.fulmen/app.yaml` exists.
//
//go:embed app.yaml
var YAML []byte
