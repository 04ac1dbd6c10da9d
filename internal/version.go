package internal

// Version is the shabda release
const Version = "0.3.0"
