package migration

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	processMappingExpectedMessageConstant = "process specification must be a mapping"
	processPipelineDecodeTemplateConstant = "invalid process pipeline for %s: %w"
	processPipelineEncodeTemplateConstant = "unable to encode process pipeline for %s: %w"
	processPipelineKindTemplateConstant   = "unsupported process pipeline node kind %d"
	yamlMapTagConstant                    = "!!map"
	yamlStringTagConstant                 = "!!str"
	yamlNullTagConstant                   = "!!null"
)

// ProcessStep is one transform step descriptor. Plugin-specific options without a dedicated
// field are kept in Settings.
type ProcessStep struct {
	Plugin       string         `yaml:"plugin"`
	Source       string         `yaml:"source,omitempty"`
	Method       string         `yaml:"method,omitempty"`
	DefaultValue any            `yaml:"default_value,omitempty"`
	Migration    string         `yaml:"migration,omitempty"`
	Search       string         `yaml:"search,omitempty"`
	Replace      *string        `yaml:"replace,omitempty"`
	Regex        bool           `yaml:"regex,omitempty"`
	Callable     string         `yaml:"callable,omitempty"`
	FilterAutop  *bool          `yaml:"filter_autop,omitempty"`
	Settings     map[string]any `yaml:",inline"`
}

// Clone returns a deep copy of the step.
func (step ProcessStep) Clone() ProcessStep {
	cloned := step
	cloned.DefaultValue = cloneValue(step.DefaultValue)
	if step.Replace != nil {
		replaceValue := *step.Replace
		cloned.Replace = &replaceValue
	}
	if step.FilterAutop != nil {
		filterAutopValue := *step.FilterAutop
		cloned.FilterAutop = &filterAutopValue
	}
	cloned.Settings = cloneSettings(step.Settings)
	return cloned
}

// Pipeline is an ordered sequence of steps evaluated first to last.
type Pipeline []ProcessStep

// Clone returns a deep copy of the pipeline.
func (pipeline Pipeline) Clone() Pipeline {
	if pipeline == nil {
		return nil
	}
	cloned := make(Pipeline, len(pipeline))
	for stepIndex := range pipeline {
		cloned[stepIndex] = pipeline[stepIndex].Clone()
	}
	return cloned
}

// ProcessSpecification maps destination property paths to pipelines and remembers insertion order,
// since later pipelines may read earlier destination values (for example "@metatags").
type ProcessSpecification struct {
	paths     []string
	pipelines map[string]Pipeline
}

// Len reports the number of destination paths.
func (specification ProcessSpecification) Len() int {
	return len(specification.paths)
}

// Paths lists destination paths in insertion order.
func (specification ProcessSpecification) Paths() []string {
	return cloneStrings(specification.paths)
}

// Pipeline returns a copy of the pipeline registered for path.
func (specification ProcessSpecification) Pipeline(path string) (Pipeline, bool) {
	pipeline, exists := specification.pipelines[path]
	if !exists {
		return nil, false
	}
	return pipeline.Clone(), true
}

// Set replaces the pipeline for path. An existing path keeps its position.
func (specification *ProcessSpecification) Set(path string, steps ...ProcessStep) {
	if specification.pipelines == nil {
		specification.pipelines = make(map[string]Pipeline)
	}
	if _, exists := specification.pipelines[path]; !exists {
		specification.paths = append(specification.paths, path)
	}
	specification.pipelines[path] = Pipeline(steps).Clone()
}

// Append adds steps to the end of the pipeline for path, creating it when absent.
func (specification *ProcessSpecification) Append(path string, steps ...ProcessStep) {
	existingPipeline := specification.pipelines[path].Clone()
	specification.Set(path, append(existingPipeline, steps...)...)
}

// UpdateStep rewrites the step at stepIndex of the pipeline for path. It reports false when the
// step does not exist.
func (specification *ProcessSpecification) UpdateStep(path string, stepIndex int, update func(ProcessStep) ProcessStep) bool {
	pipeline, exists := specification.pipelines[path]
	if !exists || stepIndex < 0 || stepIndex >= len(pipeline) {
		return false
	}
	updatedPipeline := pipeline.Clone()
	updatedPipeline[stepIndex] = update(updatedPipeline[stepIndex])
	specification.pipelines[path] = updatedPipeline
	return true
}

// Delete removes the pipeline for path.
func (specification *ProcessSpecification) Delete(path string) bool {
	if _, exists := specification.pipelines[path]; !exists {
		return false
	}
	delete(specification.pipelines, path)
	remainingPaths := make([]string, 0, len(specification.paths)-1)
	for _, existingPath := range specification.paths {
		if existingPath != path {
			remainingPaths = append(remainingPaths, existingPath)
		}
	}
	specification.paths = remainingPaths
	return true
}

// Clone returns a deep copy of the specification.
func (specification ProcessSpecification) Clone() ProcessSpecification {
	cloned := ProcessSpecification{paths: cloneStrings(specification.paths)}
	if specification.pipelines != nil {
		cloned.pipelines = make(map[string]Pipeline, len(specification.pipelines))
		for path, pipeline := range specification.pipelines {
			cloned.pipelines[path] = pipeline.Clone()
		}
	}
	return cloned
}

// MarshalYAML emits the process mapping in insertion order with every pipeline as a sequence.
func (specification ProcessSpecification) MarshalYAML() (any, error) {
	mappingNode := &yaml.Node{Kind: yaml.MappingNode, Tag: yamlMapTagConstant}
	for _, path := range specification.paths {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlStringTagConstant, Value: path}
		pipeline := specification.pipelines[path]
		if pipeline == nil {
			pipeline = Pipeline{}
		}
		valueNode := &yaml.Node{}
		if encodeError := valueNode.Encode(pipeline); encodeError != nil {
			return nil, fmt.Errorf(processPipelineEncodeTemplateConstant, path, encodeError)
		}
		mappingNode.Content = append(mappingNode.Content, keyNode, valueNode)
	}
	return mappingNode, nil
}

// UnmarshalYAML accepts the three migrate shorthand forms for each path: a scalar source name,
// a single step mapping, or a sequence of steps.
func (specification *ProcessSpecification) UnmarshalYAML(node *yaml.Node) error {
	resolvedNode := resolveAlias(node)
	if resolvedNode.Tag == yamlNullTagConstant {
		*specification = ProcessSpecification{}
		return nil
	}
	if resolvedNode.Kind != yaml.MappingNode {
		return errors.New(processMappingExpectedMessageConstant)
	}

	decoded := ProcessSpecification{}
	for contentIndex := 0; contentIndex+1 < len(resolvedNode.Content); contentIndex += 2 {
		path := resolvedNode.Content[contentIndex].Value
		pipeline, decodeError := decodePipeline(resolvedNode.Content[contentIndex+1])
		if decodeError != nil {
			return fmt.Errorf(processPipelineDecodeTemplateConstant, path, decodeError)
		}
		decoded.Set(path, pipeline...)
	}

	*specification = decoded
	return nil
}

func decodePipeline(node *yaml.Node) (Pipeline, error) {
	resolvedNode := resolveAlias(node)
	switch resolvedNode.Kind {
	case yaml.ScalarNode:
		if resolvedNode.Tag == yamlNullTagConstant {
			return Pipeline{}, nil
		}
		return Pipeline{GetStep(resolvedNode.Value)}, nil
	case yaml.MappingNode:
		var step ProcessStep
		if decodeError := resolvedNode.Decode(&step); decodeError != nil {
			return nil, decodeError
		}
		return Pipeline{step}, nil
	case yaml.SequenceNode:
		pipeline := make(Pipeline, 0, len(resolvedNode.Content))
		for _, stepNode := range resolvedNode.Content {
			var step ProcessStep
			if decodeError := resolveAlias(stepNode).Decode(&step); decodeError != nil {
				return nil, decodeError
			}
			pipeline = append(pipeline, step)
		}
		return pipeline, nil
	default:
		return nil, fmt.Errorf(processPipelineKindTemplateConstant, resolvedNode.Kind)
	}
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}
