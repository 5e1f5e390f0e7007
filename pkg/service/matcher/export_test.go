package matcher

var Tokenize = tokenize
