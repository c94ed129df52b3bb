// Package expr implements the rule condition language and action templates.
//
// A condition is a boolean combination of comparisons between a state
// variable and a literal, plus change markers:
//
//	lid_open == false && num_up_interfaces > 0
//	$:last_display_changed || !(battery_level >= 20)
//
// Conditions are parsed once into an explicit AST (Literal, VariableRef,
// Comparison, And, Or, Not, ChangeMarker) and evaluated by walking the tree
// against typed state. Values are never spliced into expression text.
//
// Precedence, highest first: "!", comparison operators, "&&", "||".
//
// Action templates are plain text with $:name placeholders that are replaced
// by the literal text of the named value at dispatch time.
package expr
