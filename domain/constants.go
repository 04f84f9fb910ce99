package domain

// Epsilon is the tolerance used when comparing floating-point WCETs and
// frame capacities. Values whose magnitude is at or below Epsilon are
// treated as zero.
const Epsilon = 1e-9
