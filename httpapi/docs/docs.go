// Package docs registers the client API's swagger document by hand, the
// way swag init would generate it, since this tree has no swag binary
// available to run. gin-swagger's handler reads the document back out
// through swag.Register/swag.GetSwagger.
package docs

import "github.com/swaggo/swag"

const doc = `{
    "swagger": "2.0",
    "info": {
        "title": "raftd client API",
        "description": "Submit and query endpoints for a raftd cluster's replicated key/value store.",
        "version": "1.0"
    },
    "basePath": "/",
    "paths": {
        "/v1/kv/{key}": {
            "get": {
                "summary": "Read a key from local FSM state",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "found"},
                    "404": {"description": "not found"},
                    "503": {"description": "fsm not ready"}
                }
            },
            "put": {
                "summary": "Set a key (rejected unless this node is the leader)",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "committed"},
                    "409": {"description": "not leader"}
                }
            },
            "delete": {
                "summary": "Delete a key (rejected unless this node is the leader)",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "committed"},
                    "409": {"description": "not leader"}
                }
            }
        },
        "/v1/status": {
            "get": {
                "summary": "Report this node's role, term, and commit index",
                "responses": {
                    "200": {"description": "status snapshot"}
                }
            }
        }
    }
}`

type swaggerDoc struct{}

func (swaggerDoc) ReadDoc() string { return doc }

func init() {
	swag.Register(swag.Name, swaggerDoc{})
}
