// Package intents converts intent spreadsheets into XML dialog fragments.
//
// Each row names an intent, an example utterance and a raw output cell. The
// raw output is a %%-separated list of items:
//
//	$name=value;other=x   context variables
//	Blabel=value;...      buttons
//	:label                jump (also :b_label for body, :c_label for condition)
//	2text                 output on channel 2 (a leading digit picks the channel)
//	text                  output on channel 1
//
// The resulting <nodes> document is meant to be imported by a dialog.
package intents
