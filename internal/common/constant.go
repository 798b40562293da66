package common

// SystemUsername is recorded as the acting user for operations without an
// authenticated principal.
const SystemUsername = "System"
