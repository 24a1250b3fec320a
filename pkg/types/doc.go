// Package types defines the wire types shared by freshsense-server and the
// spoilctl client: the closed set of gases, reading sets, LED colors, the
// classification result and the JSON payloads of the HTTP API.
//
// Result marshals to the flat object the API has always returned:
//
//	{"NH3_LED": "Red", "H2S_LED": "Green", "TMA_LED": "Green",
//	 "DMS_LED": "Green", "Food_Status": "Spoiled"}
package types
