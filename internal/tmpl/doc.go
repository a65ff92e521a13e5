// Package tmpl implements the layered template engine used to generate ZMK
// config files.
//
// Templates are plain text with a small tag vocabulary:
//
//	<%inherit file="shield/base/keymap"/>     declare a parent template
//	<%block name="kscan">default</%block>     named, overridable region
//	<%set var="layout" value="default"/>      template-level default value
//	${name}                                   placeholder
//	${id | upper}                             placeholder with filters
//	$${                                       literal "${"
//
// A tag that sits alone on its line is removed together with that line, so
// templates can be laid out one tag per line without leaving blank lines in
// the output.
//
// # Pipeline
//
// Generation is two explicit phases:
//
//	store, _ := templates.Load("")
//	resolved, err := store.Resolve("shield/split/overlay") // blocks
//	text, err := tmpl.Render(resolved, tmpl.Context{"id": "corne"}) // placeholders
//
// Resolve walks the explicit parent chain, applies the nearest override for
// every block and appends each variant's trailing body. Render substitutes
// placeholders and is pure. Every failure is a typed error naming the
// template, block or placeholder involved.
package tmpl
