/*
Package keybinds maps key strings to abstract browser actions.

# Contexts

  - global: checked after the mode context, in every mode
  - normal: browsing a document
  - input: typing a command after ':'
  - search: typing a search after '/'

A binding in a mode context shadows the same key in global.

# Multi-Key Sequences

Keys longer than one character without a modifier, such as "gg", are
sequences. The first key of a registered sequence is held by
MatchMultiKey until the next key arrives.

# Configuration File Format

Overrides live in keybinds.jsonc and map an action to a comma separated
list of keys. Comments are allowed:

	{
	  // vim users
	  "normal": {
	    "navigate_down": "down,j,ctrl+n",
	    "yank": "y,c"
	  },
	  "input": {
	    "complete": "tab,ctrl+i"
	  }
	}

Listing an action replaces all of its default keys in that context.

# Validation

The validator reports unknown actions, empty or malformed keys, a key
bound to two actions in one context, and rebinding of ctrl+c.
*/
package keybinds
