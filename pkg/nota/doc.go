// Package nota implements the client-side model of the Nota CMS dashboard.
//
// A Session bootstraps the schema registry for one dashboard session and hands
// out the editing components:
//
//	session := nota.NewSession(api, nota.WithLogger(logger))
//	if err := session.Bootstrap(ctx); err != nil { ... }
//
//	editor := session.NewEditor()
//	_ = editor.SelectSchema(ctx, "posts")
//	_ = editor.SelectContent(id)
//	_ = editor.BeginEdit()
//	_ = editor.SetField("title", "Hello")
//	err := editor.Save(ctx)
//
// Records fetched from the API are canonicalized by NormalizeContent, which
// accepts every casing and boolean-wrapper variant the backend is known to
// emit. Schema definitions are built with SchemaBuilder and new records with
// Draft; both validate locally and never reach the network on failure.
//
// The HTTP implementation of API lives in package client; package notatest
// provides an in-memory fake of the REST API for tests.
package nota
