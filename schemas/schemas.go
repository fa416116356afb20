// Package schemas embeds the JSON schemas of every message the service puts on a broker.
// Files live at events/<event-name>/v<major>.json.
package schemas

import "embed"

//go:embed events
var SchemasFS embed.FS
