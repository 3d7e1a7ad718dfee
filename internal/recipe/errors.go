package recipe

import "errors"

// ErrNoRecipeFound is returned when every extraction strategy came up
// empty. Re-fetching the same URL will not help; callers should offer
// manual entry instead.
var ErrNoRecipeFound = errors.New("no recipe data found")
