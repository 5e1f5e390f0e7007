package http

// VerifySlackSignature is exported for testing
var VerifySlackSignature = verifySlackSignature

// StatusOf is exported for testing
var StatusOf = statusOf
