// Package model defines the typed description of the YouTube channel form and
// the record it produces. FormModel and Field describe the rendered surface
// (names, labels, input kinds, rule hints) while ChannelForm is the value a
// successful submission yields. Inside the form engine values travel as a
// dotted-path tree (map[string]any); DefaultValues builds that tree and Decode
// converts it back into a ChannelForm.
package model
