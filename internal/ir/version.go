package ir

// EngineVersion is the session engine release, reported by `studio --version`.
const EngineVersion = "0.1.0"
