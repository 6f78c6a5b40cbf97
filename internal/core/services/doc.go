// Package services implements the driving port interfaces.
// Services contain the core business logic of the answer pipeline and
// orchestrate calls to driven ports (adapters): metadata normalization,
// index build, query expansion, retrieval, reranking and answer synthesis.
package services
