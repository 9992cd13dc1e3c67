// Package via is the runtime support library of the via resource
// compiler and the root of the via module.
//
// The module compiles .via resource definitions into two synchronized
// artifacts, a Go backend package and a TypeScript declaration set:
//
//   - [compiler]: the regeneration coordinator (Generate, Check)
//   - [compiler/load]: source discovery and parallel parsing
//   - [compiler/parser]: DSL parsing with collected diagnostics
//   - [compiler/resolve]: type, nullability and association resolution
//   - [compiler/ir]: the versioned document both emitters read
//   - [compiler/gen/golang]: the Go emitter (models, controllers, routes)
//   - [compiler/gen/ts]: the TypeScript declaration emitter
//   - [config]: via.yaml project configuration
//
// This root package is the half that generated code imports at
// runtime: the request [Context], the [Handler] adapter, the
// [ActionResult] placeholder payload and the [PolyRef] reference
// type, together with the error values generated stubs return.
//
// # Quick Start
//
// Describe a resource in app/blog.via:
//
//	resource Post {
//	  model {
//	    field title: string
//	    field views: int = 0
//	    field rating?: float
//	    belongs_to author: User
//	  }
//	  controller {
//	    params {
//	      editable { title, rating }
//	    }
//	    respond_with [json, html]
//	    actions auto_crud
//	  }
//	}
//
// and regenerate the output module:
//
//	$ via gen
//
// The gen directory then holds models/post.go, controllers/post.go, a
// routes.go registrar, a generator-owned go.mod and ts/post.ts, all
// rebuilt wholesale on every run.
//
// # Field Types
//
// Declared types map onto a closed set of scalar kinds:
//
//	string    // short text
//	text      // unlimited text
//	bool      // boolean
//	int       // int64
//	bigint    // int64
//	float     // float64
//	datetime  // time.Time, ISO 8601 on the wire
//	date      // time.Time, ISO 8601 on the wire
//	uuid      // uuid.UUID
//	json      // raw JSON document
//	bytes     // []byte, base64 on the wire
//
// A ? after the field name makes the field nullable. Nullability is
// never inferred from anything else; a = literal default only affects
// whether the create params require the field. Every model also gets
// an implicit id, createdAt and updatedAt unless it declares fields
// under those names itself.
//
// # Associations
//
//	belongs_to author: User          // authorId column, explicit target
//	belongs_to post                  // target inferred from the name
//	belongs_to subject: [Post, User] // polymorphic, closed candidate set
//	has_many comments                // no column, never serialized
//
// # Regeneration
//
// Output is idempotent and committed atomically. The whole tree is
// staged next to the output root and swapped in with one rename, so a
// failed run leaves the previous output in place. Ejected units are
// never rewritten:
//
//	eject publish "gen/handlers/publish_post.go#PublishPost"
//
// marks the publish action hand-owned; regeneration emits a marker
// comment instead of a stub and preserves the referenced file byte
// for byte.
//
// The [compiler] package exposes the same pipeline to Go callers:
//
//	res, err := compiler.Generate(ctx, compiler.Config{RootDir: "."})
//
// For the full grammar see the package doc of [compiler/parser]; for
// the shape of the generated code see [compiler/gen/golang] and
// [compiler/gen/ts].
package via
