// Copyright 2022 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sharewire serializes secret share requests and responses as protocol buffers, and
// provides the serialized entry point used by foreign-language bindings.
//
// The messages are defined in secret_share.proto and loaded from its descriptor at init.
package sharewire

import (
	"math"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/prng"
	"github.com/google/privacy-sandbox-aggregation-primitives/encryption/secretshare"
)

const protoPackage = "privacy_sandbox.aggregation.primitives"

var (
	requestDesc protoreflect.MessageDescriptor
	seedDesc    protoreflect.MessageDescriptor
	shareDesc   protoreflect.MessageDescriptor

	// Deterministic output writes the fields in field number order.
	marshalOptions = proto.MarshalOptions{Deterministic: true}
)

func field(name string, number int32, label descriptorpb.FieldDescriptorProto_Label, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
}

// secretShareFile mirrors secret_share.proto.
func secretShareFile() *descriptorpb.FileDescriptorProto {
	optional := descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
	repeated := descriptorpb.FieldDescriptorProto_LABEL_REPEATED

	shareSeed := field("share_seed", 2, optional, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	shareSeed.TypeName = proto.String("." + protoPackage + ".PrngSeed")

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("encryption/sharewire/secret_share.proto"),
		Package: proto.String(protoPackage),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("SecretShareGeneratorRequest"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("ring_modulus", 1, optional, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
					field("data", 2, repeated, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
				},
			},
			{
				Name: proto.String("PrngSeed"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("key", 1, optional, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
					field("iv", 2, optional, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
				},
			},
			{
				Name: proto.String("SecretShare"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("share_vector", 1, repeated, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
					shareSeed,
				},
			},
		},
	}
}

func init() {
	fd, err := protodesc.NewFile(secretShareFile(), nil)
	if err != nil {
		panic(err)
	}
	messages := fd.Messages()
	requestDesc = messages.ByName("SecretShareGeneratorRequest")
	seedDesc = messages.ByName("PrngSeed")
	shareDesc = messages.ByName("SecretShare")
}

// SecretShareGeneratorRequest asks for the secret shares of Data modulo RingModulus.
type SecretShareGeneratorRequest struct {
	RingModulus uint64
	Data        []uint32
}

func setUint32List(m *dynamicpb.Message, name protoreflect.Name, values []uint32) {
	if len(values) == 0 {
		return
	}
	list := m.Mutable(m.Descriptor().Fields().ByName(name)).List()
	for _, v := range values {
		list.Append(protoreflect.ValueOfUint32(v))
	}
}

func getUint32List(m *dynamicpb.Message, name protoreflect.Name) []uint32 {
	list := m.Get(m.Descriptor().Fields().ByName(name)).List()
	if list.Len() == 0 {
		return nil
	}
	values := make([]uint32, list.Len())
	for i := range values {
		values[i] = uint32(list.Get(i).Uint())
	}
	return values
}

func getBytes(m protoreflect.Message, name protoreflect.Name) []byte {
	b := m.Get(m.Descriptor().Fields().ByName(name)).Bytes()
	if len(b) == 0 {
		return nil
	}
	return append([]byte{}, b...)
}

func unmarshal(b []byte, desc protoreflect.MessageDescriptor) (*dynamicpb.Message, error) {
	m := dynamicpb.NewMessage(desc)
	if err := proto.Unmarshal(b, m); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "failed to parse the %s proto: %v", desc.Name(), err)
	}
	return m, nil
}

// Marshal serializes the request.
func (r *SecretShareGeneratorRequest) Marshal() ([]byte, error) {
	m := dynamicpb.NewMessage(requestDesc)
	if r.RingModulus != 0 {
		m.Set(requestDesc.Fields().ByName("ring_modulus"), protoreflect.ValueOfUint64(r.RingModulus))
	}
	setUint32List(m, "data", r.Data)
	return marshalOptions.Marshal(m)
}

// UnmarshalSecretShareGeneratorRequest parses a serialized request.
func UnmarshalSecretShareGeneratorRequest(b []byte) (*SecretShareGeneratorRequest, error) {
	m, err := unmarshal(b, requestDesc)
	if err != nil {
		return nil, err
	}
	return &SecretShareGeneratorRequest{
		RingModulus: m.Get(requestDesc.Fields().ByName("ring_modulus")).Uint(),
		Data:        getUint32List(m, "data"),
	}, nil
}

// MarshalSecretShare serializes a secret share.
func MarshalSecretShare(share *secretshare.SecretShare) ([]byte, error) {
	m := dynamicpb.NewMessage(shareDesc)
	setUint32List(m, "share_vector", share.ShareVector)
	if share.ShareSeed != nil {
		seed := dynamicpb.NewMessage(seedDesc)
		if len(share.ShareSeed.Key) > 0 {
			seed.Set(seedDesc.Fields().ByName("key"), protoreflect.ValueOfBytes(share.ShareSeed.Key))
		}
		if len(share.ShareSeed.Iv) > 0 {
			seed.Set(seedDesc.Fields().ByName("iv"), protoreflect.ValueOfBytes(share.ShareSeed.Iv))
		}
		m.Set(shareDesc.Fields().ByName("share_seed"), protoreflect.ValueOfMessage(seed))
	}
	return marshalOptions.Marshal(m)
}

// UnmarshalSecretShare parses a serialized secret share.
func UnmarshalSecretShare(b []byte) (*secretshare.SecretShare, error) {
	m, err := unmarshal(b, shareDesc)
	if err != nil {
		return nil, err
	}
	share := &secretshare.SecretShare{ShareVector: getUint32List(m, "share_vector")}
	if seedField := shareDesc.Fields().ByName("share_seed"); m.Has(seedField) {
		seed := m.Get(seedField).Message()
		share.ShareSeed = &prng.Seed{Key: getBytes(seed, "key"), Iv: getBytes(seed, "iv")}
	}
	return share, nil
}

// GenerateSecretShares parses a serialized SecretShareGeneratorRequest, splits its data and
// returns the serialized SecretShare. Every data element must be less than the ring modulus.
func GenerateSecretShares(serializedRequest []byte) ([]byte, error) {
	request, err := UnmarshalSecretShareGeneratorRequest(serializedRequest)
	if err != nil {
		return nil, err
	}
	if request.RingModulus > math.MaxUint32 {
		return nil, status.Errorf(codes.InvalidArgument, "The ring modulus %d does not fit in 32 bits.", request.RingModulus)
	}
	share, err := secretshare.GenerateBoundedSecretShares(secretshare.Parameter{Modulus: uint32(request.RingModulus)}, request.Data)
	if err != nil {
		return nil, err
	}
	b, err := MarshalSecretShare(share)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to serialize the SecretShare proto: %v", err)
	}
	return b, nil
}
